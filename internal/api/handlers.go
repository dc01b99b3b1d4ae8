package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/PhanTom497/Flashport/internal/ledger"
)

func playerID(r *http.Request) string {
	return chi.URLParam(r, "player")
}

func balanceResponse(bal ledger.Balance) BalanceResponse {
	return BalanceResponse{
		Balance:          bal,
		AvailableDisplay: ledger.Display(bal.Available),
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeValidationError(w, r, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if !s.decode(w, r, &req) {
		return
	}

	bal, err := s.controller.Deposit(r.Context(), playerID(r), req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, balanceResponse(bal))
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if !s.decode(w, r, &req) {
		return
	}

	bal, err := s.controller.Withdraw(r.Context(), playerID(r), req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, balanceResponse(bal))
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req SessionStartRequest
	if !s.decode(w, r, &req) {
		return
	}

	sess, err := s.controller.StartSession(r.Context(), playerID(r), time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, SessionResponse{Session: sess})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.EndSession(r.Context(), playerID(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, StatusResponse{Status: "ended"})
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req NewGameRequest
	if !s.decode(w, r, &req) {
		return
	}

	card, err := s.controller.NewGame(r.Context(), playerID(r), req.Wager)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, CardResponse{Card: card})
}

func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := playerID(r)

	result, err := s.controller.RollAndMatch(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	card, err := s.controller.CurrentCard(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	bal, err := s.controller.Balance(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, RollResponse{
		Roll:    result,
		Card:    card,
		Balance: balanceResponse(bal),
	})
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := playerID(r)

	payout, err := s.controller.ClaimPrize(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	bal, err := s.controller.Balance(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, ClaimResponse{
		Payout:        payout,
		AmountDisplay: ledger.Display(payout.Amount),
		Balance:       balanceResponse(bal),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.controller.Session(r.Context(), playerID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SessionResponse{Session: sess})
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	card, err := s.controller.CurrentCard(r.Context(), playerID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, CardResponse{Card: card})
}

func (s *Server) handleGetDrawnNumbers(w http.ResponseWriter, r *http.Request) {
	drawn, err := s.controller.DrawnNumbers(r.Context(), playerID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if drawn == nil {
		drawn = []int{}
	}
	s.writeJSON(w, http.StatusOK, DrawnNumbersResponse{DrawnNumbers: drawn})
}

func (s *Server) handleGetLastRoll(w http.ResponseWriter, r *http.Request) {
	roll, err := s.controller.LastRoll(r.Context(), playerID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, LastRollResponse{Roll: roll})
}

func (s *Server) handleGetPotentialPayout(w http.ResponseWriter, r *http.Request) {
	payout, err := s.controller.PotentialPayout(r.Context(), playerID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := PotentialPayoutResponse{Payout: payout}
	if payout != nil {
		resp.AmountDisplay = ledger.Display(payout.Amount)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	bal, err := s.controller.Balance(r.Context(), playerID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, balanceResponse(bal))
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.controller.Stats(r.Context(), playerID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleGetFairness(w http.ResponseWriter, r *http.Request) {
	fairness, err := s.controller.Fairness(r.Context(), playerID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, fairness)
}
