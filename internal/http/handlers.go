package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"costmanager/internal/core"
	applog "costmanager/internal/log"
)

type costRequest struct {
	Description string   `json:"description"`
	Category    string   `json:"category"`
	UserID      int64    `json:"userid"`
	Sum         *float64 `json:"sum"`
	Date        string   `json:"date,omitempty"`
}

type costResponse struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	UserID      int64     `json:"userid"`
	Sum         float64   `json:"sum"`
	Date        time.Time `json:"date"`
}

type userRequest struct {
	ID            int64  `json:"id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Birthday      string `json:"birthday"`
	MaritalStatus string `json:"marital_status"`
}

type userResponse struct {
	ID            int64  `json:"id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Birthday      string `json:"birthday"`
	MaritalStatus string `json:"marital_status"`
}

type userWithTotalResponse struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Total     float64 `json:"total"`
}

// reportResponse mirrors the wire shape of the monthly report: costs is an
// array of five single-key objects in fixed category order, and userid is
// echoed exactly as the client sent it.
type reportResponse struct {
	UserID string                         `json:"userid"`
	Year   int                            `json:"year"`
	Month  int                            `json:"month"`
	Costs  []map[string][]core.ReportItem `json:"costs"`
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, team)
}

func (s *Server) handleAddCost(w http.ResponseWriter, r *http.Request) {
	var req costRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Sum == nil {
		writeError(w, http.StatusBadRequest, "missing required field: sum")
		return
	}

	cost := core.Cost{
		UserID:      req.UserID,
		Description: req.Description,
		Category:    core.Category(req.Category),
		Sum:         *req.Sum,
	}
	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format")
			return
		}
		cost.Date = date
	}

	created, err := s.costs.CreateCost(r.Context(), cost)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, costResponse{
		ID:          created.ID,
		Description: created.Description,
		Category:    string(created.Category),
		UserID:      created.UserID,
		Sum:         created.Sum,
		Date:        created.Date,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	id := query.Get("id")
	yearStr := query.Get("year")
	monthStr := query.Get("month")
	if id == "" || yearStr == "" || monthStr == "" {
		writeError(w, http.StatusBadRequest, "missing required query parameters")
		return
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month")
		return
	}

	report, err := s.costs.MonthlyReport(r.Context(), id, year, month)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	costs := make([]map[string][]core.ReportItem, 0, len(report.Groups))
	for _, group := range report.Groups {
		costs = append(costs, map[string][]core.ReportItem{
			string(group.Category): group.Items,
		})
	}

	writeJSON(w, http.StatusOK, reportResponse{
		UserID: report.UserID,
		Year:   report.Year,
		Month:  report.Month,
		Costs:  costs,
	})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user := core.User{
		ID:            req.ID,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		MaritalStatus: core.MaritalStatus(req.MaritalStatus),
	}
	if req.Birthday != "" {
		birthday, err := parseDate(req.Birthday)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid birthday format")
			return
		}
		user.Birthday = birthday
	}

	created, err := s.costs.CreateUser(r.Context(), user)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{
		ID:            created.ID,
		FirstName:     created.FirstName,
		LastName:      created.LastName,
		Birthday:      created.Birthday.UTC().Format("2006-01-02"),
		MaritalStatus: string(created.MaritalStatus),
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, total, err := s.costs.GetUserWithTotal(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userWithTotalResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Total:     total,
	})
}

// writeDomainError maps domain sentinels to HTTP status codes. Anything not
// recognized is a storage failure and stays a generic 500; the wrapped cause
// goes to the log, not the client.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, core.ErrNotFound.Error())
	case errors.Is(err, core.ErrDuplicateID):
		writeError(w, http.StatusBadRequest, core.ErrDuplicateID.Error())
	case core.IsValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldError, err.Error(),
			applog.FieldPath, r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parseDate accepts RFC 3339 timestamps and bare YYYY-MM-DD dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
