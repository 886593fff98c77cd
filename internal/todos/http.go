package todos

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	msgUpdated  = "Todo updated successfully"
	msgNotFound = "Todo not found"
	msgDeleted  = "Item deleted"
	msgInternal = "Internal Server Error"
)

// createdTodo is the create response. It does not carry createdAt.
type createdTodo struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Completed   bool    `json:"completed"`
}

type fieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string       `json:"message"`
	Details []fieldError `json:"details,omitempty"`
}

func RegisterRoutes(r chi.Router, repo Repository, logger *slog.Logger) {
	r.Get("/todos", listTodos(repo, logger))
	r.Post("/todos", createTodo(repo))
	r.Put("/todos/{id}", updateTodo(repo))
	r.Delete("/todos/{id}", deleteTodo(repo, logger))
}

func listTodos(repo Repository, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		todos, err := repo.List(r.Context())
		if err != nil {
			logger.Error("todo_list_failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, messageResponse{Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, todos)
	}
}

func createTodo(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var req createTodoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: decodeMessage(err)})
			return
		}
		if vErrs := validateRequest(req); len(vErrs) > 0 {
			writeValidation(w, vErrs)
			return
		}

		t, err := repo.Create(r.Context(), req.toNewTodo())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: err.Error()})
			return
		}

		writeJSON(w, http.StatusCreated, createdTodo{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Completed:   false,
		})
	}
}

func updateTodo(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var req updateTodoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: decodeMessage(err)})
			return
		}
		if vErrs := validateRequest(req); len(vErrs) > 0 {
			writeValidation(w, vErrs)
			return
		}

		err := repo.Update(r.Context(), id, req.toUpdate())
		switch {
		case errors.Is(err, ErrNotFound):
			writeJSON(w, http.StatusNotFound, messageResponse{Message: msgNotFound})
		case err != nil:
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: err.Error()})
		default:
			writeJSON(w, http.StatusOK, messageResponse{Message: msgUpdated})
		}
	}
}

func deleteTodo(repo Repository, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		if err := repo.Delete(r.Context(), id); err != nil {
			logger.Error("todo_delete_failed",
				slog.Int64("id", id),
				slog.String("error", err.Error()),
			)
			writeJSON(w, http.StatusInternalServerError, messageResponse{Message: msgInternal})
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: msgDeleted})
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid id"})
		return 0, false
	}
	return id, true
}

func decodeMessage(err error) string {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return "invalid JSON"
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return typeErr.Field + " is invalid"
	}
	return err.Error()
}

func writeValidation(w http.ResponseWriter, errs []fieldError) {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	writeJSON(w, http.StatusBadRequest, messageResponse{
		Message: strings.Join(msgs, "; "),
		Details: errs,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
