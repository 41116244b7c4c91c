package server

import (
	"encoding/base64"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"github.com/thrustlabs/thrust-engine/internal/engine"
	"github.com/thrustlabs/thrust-engine/internal/state"
)

func parseKey(raw string) (solana.PublicKey, bool) {
	if raw == "" {
		return solana.PublicKey{}, true
	}
	key, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		return solana.PublicKey{}, false
	}
	return key, true
}

func (s *Server) handleInit(c *gin.Context) {
	var req struct {
		Owner     string `json:"owner" binding:"required"`
		SignerKey string `json:"signer_key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	owner, ok := parseKey(req.Owner)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid owner"})
		return
	}
	signer, ok := parseKey(req.SignerKey)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signer_key"})
		return
	}

	if err := s.engine.InitMainState(c.Request.Context(), owner, signer); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "initialized"})
}

func (s *Server) handleUpdateConfig(c *gin.Context) {
	var req struct {
		Caller             string  `json:"caller" binding:"required"`
		Owner              string  `json:"owner" binding:"required"`
		FeeRecipient       string  `json:"fee_recipient" binding:"required"`
		TradingFeeRate     uint64  `json:"trading_fee_rate"`
		ReferralRewardRate uint64  `json:"referral_reward_rate"`
		ReferralTradeLimit uint64  `json:"referral_trade_limit"`
		SignerKey          string  `json:"signer_key" binding:"required"`
		TotalSupply        *uint64 `json:"total_supply"`
		InitVirtBase       *uint64 `json:"init_virt_base"`
		InitRealBase       *uint64 `json:"init_real_base"`
		InitVirtQuote      *uint64 `json:"init_virt_quote"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caller, ok1 := parseKey(req.Caller)
	owner, ok2 := parseKey(req.Owner)
	recipient, ok3 := parseKey(req.FeeRecipient)
	signer, ok4 := parseKey(req.SignerKey)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address"})
		return
	}

	upd := state.MainStateUpdate{
		Owner:              owner,
		FeeRecipient:       recipient,
		TradingFeeRate:     req.TradingFeeRate,
		ReferralRewardRate: req.ReferralRewardRate,
		ReferralTradeLimit: req.ReferralTradeLimit,
		SignerKey:          signer,
		TotalSupply:        req.TotalSupply,
		InitVirtBase:       req.InitVirtBase,
		InitRealBase:       req.InitRealBase,
		InitVirtQuote:      req.InitVirtQuote,
	}
	if err := s.engine.UpdateMainState(c.Request.Context(), caller, upd); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (s *Server) handleReferencePrice(c *gin.Context) {
	var req struct {
		Caller string `json:"caller" binding:"required"`
		Price  uint64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	caller, ok := parseKey(req.Caller)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid caller"})
		return
	}
	if err := s.engine.UpdateReferencePrice(c.Request.Context(), caller, req.Price); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (s *Server) handleCreatePool(c *gin.Context) {
	var req struct {
		Creator        string           `json:"creator" binding:"required"`
		Mint           string           `json:"mint" binding:"required"`
		Name           string           `json:"name"`
		Symbol         string           `json:"symbol"`
		URI            string           `json:"uri"`
		TradeStartTime uint64           `json:"trade_start_time"`
		Tax            *taxPolicyJSON   `json:"tax"`
		WaitingRoom    *waitingRoomJSON `json:"waiting_room"`
		Referrer       string           `json:"referrer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creator, ok1 := parseKey(req.Creator)
	mint, ok2 := parseKey(req.Mint)
	referrer, ok3 := parseKey(req.Referrer)
	if !ok1 || !ok2 || !ok3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address"})
		return
	}

	in := engine.CreatePoolInput{
		Mint:           mint,
		Name:           req.Name,
		Symbol:         req.Symbol,
		URI:            req.URI,
		TradeStartTime: req.TradeStartTime,
		Referrer:       referrer,
	}
	if req.Tax != nil {
		tax, err := req.Tax.policy()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		in.Tax = tax
	}
	if req.WaitingRoom != nil {
		room, err := req.WaitingRoom.room()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		in.WaitingRoom = room
	}

	addr, err := s.engine.CreatePool(c.Request.Context(), creator, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pool": addr.String(), "mint": mint.String()})
}

func (s *Server) handleGetPool(c *gin.Context) {
	mint, ok := parseKey(c.Param("mint"))
	if !ok || mint.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mint"})
		return
	}
	addr, err := state.PoolAddress(mint)
	if err != nil {
		s.fail(c, err)
		return
	}
	pool, found := s.store.Pool(addr)
	if !found {
		s.fail(c, engine.ErrPoolNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pool":             addr.String(),
		"mint":             pool.Mint.String(),
		"owner":            pool.Owner.String(),
		"trade_start_time": pool.StartTradeTime,
		"virt_base":        pool.VirtBase,
		"real_base":        pool.RealBase,
		"virt_quote":       pool.VirtQuote,
		"real_quote":       pool.RealQuote,
		"complete":         pool.Complete,
		"withdrawn":        pool.Withdrawn,
	})
}

func (s *Server) handleBuy(c *gin.Context) {
	mint, ok := parseKey(c.Param("mint"))
	if !ok || mint.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mint"})
		return
	}
	var req struct {
		Buyer    string `json:"buyer" binding:"required"`
		Amount   uint64 `json:"amount" binding:"required"`
		Referrer string `json:"referrer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	buyer, ok1 := parseKey(req.Buyer)
	referrer, ok2 := parseKey(req.Referrer)
	if !ok1 || !ok2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address"})
		return
	}

	res, err := s.engine.Buy(c.Request.Context(), buyer, mint, req.Amount, referrer)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"base_out":        res.BaseOut,
		"quote_in":        res.QuoteIn,
		"fee":             res.Fee,
		"referral_reward": res.ReferralReward,
		"completed":       res.Completed,
	})
}

func (s *Server) handleSell(c *gin.Context) {
	mint, ok := parseKey(c.Param("mint"))
	if !ok || mint.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mint"})
		return
	}
	var req struct {
		Seller    string `json:"seller" binding:"required"`
		Amount    uint64 `json:"amount" binding:"required"`
		Message   string `json:"message" binding:"required"`
		Signature string `json:"signature" binding:"required"`
		Referrer  string `json:"referrer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	seller, ok1 := parseKey(req.Seller)
	referrer, ok2 := parseKey(req.Referrer)
	if !ok1 || !ok2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address"})
		return
	}
	message, err := base64.StdEncoding.DecodeString(req.Message)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message encoding"})
		return
	}
	signature, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature encoding"})
		return
	}

	res, err := s.engine.Sell(c.Request.Context(), seller, mint, req.Amount, message, signature, referrer)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"quote_out":       res.QuoteOut,
		"gross_quote":     res.GrossQuote,
		"fee":             res.Fee,
		"referral_reward": res.ReferralReward,
	})
}

func (s *Server) handleWithdraw(c *gin.Context) {
	mint, ok := parseKey(c.Param("mint"))
	if !ok || mint.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mint"})
		return
	}
	var req struct {
		Caller string `json:"caller" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	caller, ok := parseKey(req.Caller)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid caller"})
		return
	}

	if err := s.engine.Withdraw(c.Request.Context(), caller, mint); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "withdrawn"})
}

func (s *Server) handleGetUser(c *gin.Context) {
	trader, ok := parseKey(c.Param("address"))
	if !ok || trader.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address"})
		return
	}
	addr, err := state.UserAddress(trader)
	if err != nil {
		s.fail(c, err)
		return
	}
	user := s.store.User(addr, trader)
	c.JSON(http.StatusOK, gin.H{
		"address":          user.Address.String(),
		"trade_count":      user.TradeCount,
		"volume_native":    user.VolumeNative,
		"volume_reference": user.VolumeReference,
		"referrer":         user.Referrer.String(),
		"referred_trades":  user.ReferredTrades,
	})
}

func (s *Server) handleDeposit(c *gin.Context) {
	account, ok := parseKey(c.Param("address"))
	if !ok || account.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address"})
		return
	}
	var req struct {
		Amount uint64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.vault.Deposit(account, req.Amount)
	c.JSON(http.StatusOK, gin.H{"balance": s.vault.Balance(account)})
}
