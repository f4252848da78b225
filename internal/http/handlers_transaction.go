package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"budgetly/internal/budget"
	"budgetly/internal/core"
	"budgetly/internal/log"
)

type transactionRequest struct {
	Date     string      `json:"date"`
	Category string      `json:"category"`
	Amount   json.Number `json:"amount"`
	Title    string      `json:"title"`
	Message  string      `json:"message"`
}

type transactionResponse struct {
	ID       int64   `json:"id"`
	Kind     string  `json:"kind"`
	Date     string  `json:"date"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Title    string  `json:"title"`
	Message  string  `json:"message"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	s.createTransaction(w, r, core.Expense)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	s.createTransaction(w, r, core.Income)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	s.listTransactions(w, r, core.Expense)
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	s.listTransactions(w, r, core.Income)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	s.deleteTransaction(w, r, core.Expense)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	s.deleteTransaction(w, r, core.Income)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request, kind core.TransactionKind) {
	owner := ownerFromContext(r.Context())

	var req transactionRequest
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&req); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	t, err := req.toTransaction(owner, kind)
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	id, err := s.transactions.Add(r.Context(), t)
	if err != nil {
		if isValidationError(err) {
			UnprocessableEntityError(err.Error()).Write(w)
			return
		}
		s.logger.ErrorContext(r.Context(), "Transaction create failed",
			log.FieldOwner, owner,
			log.FieldKind, string(kind),
			log.FieldError, err)
		InternalServerError("could not save transaction").Write(w)
		return
	}
	t.ID = id

	NewJSONResponse().Status(http.StatusCreated).Payload(toTransactionResponse(t)).Write(w)
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request, kind core.TransactionKind) {
	owner := ownerFromContext(r.Context())

	items, err := s.transactions.List(r.Context(), owner, kind)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Transaction list failed",
			log.FieldOwner, owner,
			log.FieldKind, string(kind),
			log.FieldError, err)
		InternalServerError("could not list transactions").Write(w)
		return
	}

	resp := make([]transactionResponse, 0, len(items))
	for _, t := range items {
		resp = append(resp, toTransactionResponse(t))
	}
	NewJSONResponse().Payload(resp).Write(w)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request, kind core.TransactionKind) {
	owner := ownerFromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		BadRequestError("invalid transaction id").Write(w)
		return
	}

	if err := s.transactions.Delete(r.Context(), owner, id, kind); err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			NotFoundError(budget.ErrNotFound.Error()).Write(w)
			return
		}
		s.logger.ErrorContext(r.Context(), "Transaction delete failed",
			log.FieldOwner, owner,
			log.FieldTransactionID, id,
			log.FieldError, err)
		InternalServerError("could not delete transaction").Write(w)
		return
	}

	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (r transactionRequest) toTransaction(owner string, kind core.TransactionKind) (core.Transaction, error) {
	t := core.Transaction{
		Owner:    owner,
		Kind:     kind,
		Category: strings.TrimSpace(r.Category),
		Title:    strings.TrimSpace(r.Title),
		Message:  strings.TrimSpace(r.Message),
	}

	amount, err := parseAmount(r.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Amount = amount

	if strings.TrimSpace(r.Date) == "" {
		t.Date = core.Today()
	} else if t.Date, err = core.ParseDate(r.Date); err != nil {
		return core.Transaction{}, errors.New("invalid date, expected YYYY-MM-DD")
	}

	return t, nil
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:       t.ID,
		Kind:     string(t.Kind),
		Date:     t.Date.String(),
		Category: t.Category,
		Amount:   t.Amount.Decimal(),
		Title:    t.Title,
		Message:  t.Message,
	}
}
