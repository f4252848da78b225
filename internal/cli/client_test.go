package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newAPIStub(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-token")
}

func TestClient_GetProgress(t *testing.T) {
	client := newAPIStub(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/planner/progress" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		json.NewEncoder(w).Encode(ProgressReport{
			Categories: map[string]CategoryProgress{
				"Groceries": {Limit: 500, Spent: 120.5},
			},
			Notifications: []string{`Attention: You have spent 80% of your set amount limit in "Groceries"!`},
		})
	})

	report, err := client.GetProgress(context.Background())
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if got := report.Categories["Groceries"].Spent; got != 120.5 {
		t.Errorf("spent = %v, want 120.5", got)
	}
	if len(report.Notifications) != 1 {
		t.Errorf("notifications = %d, want 1", len(report.Notifications))
	}
}

func TestClient_AddExpense(t *testing.T) {
	client := newAPIStub(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/expenses" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var req NewTransaction
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Amount != "12.50" {
			t.Errorf("amount = %q, want 12.50", req.Amount)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Transaction{ID: 7, Kind: "expense", Category: req.Category, Amount: 12.5})
	})

	saved, err := client.AddExpense(context.Background(), NewTransaction{Category: "Groceries", Amount: "12.50"})
	if err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if saved.ID != 7 {
		t.Errorf("id = %d, want 7", saved.ID)
	}
}

func TestClient_DeleteExpense_NoContent(t *testing.T) {
	client := newAPIStub(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/expenses/3" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.DeleteExpense(context.Background(), 3); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"authentication required"}`, ErrUnauthorized},
		{"no planner", http.StatusNotFound, `{"error":"no active planner found"}`, ErrNoPlanner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newAPIStub(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.GetProgress(context.Background())
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestClient_ErrorPayloadMessage(t *testing.T) {
	client := newAPIStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"unknown category"}`))
	})

	_, err := client.SetPlanner(context.Background(), Planner{})
	if err == nil || err.Error() != "unknown category" {
		t.Errorf("err = %v, want server message passed through", err)
	}
}
