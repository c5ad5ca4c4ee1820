package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"github.com/hirotachi/the-void/pkg/store"
	"github.com/hirotachi/the-void/pkg/utils"
	"io"
	"net/http"
	"strconv"
	"strings"
)

type insertInput struct {
	Content string `json:"content"`
}

type verifyInput struct {
	Verified *bool `json:"verified"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, &store.APIError{Code: code, Message: message})
}

func decodeInserts(body io.Reader) ([]insertInput, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var inputs []insertInput
		err := json.Unmarshal(data, &inputs)
		return inputs, err
	}
	var input insertInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, err
	}
	return []insertInput{input}, nil
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	inputs, err := decodeInserts(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "PGRST102", "invalid body: "+err.Error())
		return
	}
	for _, input := range inputs {
		if strings.TrimSpace(input.Content) == "" {
			writeError(w, http.StatusBadRequest, "23514", "content must not be empty")
			return
		}
	}

	inserted := make([]*store.Message, 0, len(inputs))
	for _, input := range inputs {
		message, err := s.Store.Insert(r.Context(), input.Content)
		if err != nil {
			s.log.WithError(err).Error("failed to insert message")
			writeError(w, http.StatusInternalServerError, "XX000", "failed to insert message")
			return
		}
		inserted = append(inserted, message)
	}

	if strings.Contains(r.Header.Get(utils.PreferHeader), "return=representation") {
		writeJSON(w, http.StatusCreated, inserted)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	offset, err := intParam(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "PGRST100", "invalid offset")
		return
	}
	limit, err := intParam(query.Get("limit"), -1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "PGRST100", "invalid limit")
		return
	}

	var rows []*store.Message
	var total int
	switch query.Get("verified") {
	case "eq.true":
		rows, total, err = s.selectVerified(r, offset, limit)
	case "", "eq.false":
		rows, total, err = s.selectAll(r, query.Get("verified"), offset, limit)
	default:
		writeError(w, http.StatusBadRequest, "PGRST100", "unsupported filter on verified")
		return
	}
	if err != nil {
		s.log.WithError(err).Error("failed to select messages")
		writeError(w, http.StatusInternalServerError, "XX000", "failed to select messages")
		return
	}

	if strings.Contains(r.Header.Get(utils.PreferHeader), utils.PreferCountExact) {
		w.Header().Set(utils.ContentRangeHeader, utils.BuildContentRange(offset, len(rows), total))
	} else if len(rows) > 0 {
		w.Header().Set(utils.ContentRangeHeader, strconv.Itoa(offset)+"-"+strconv.Itoa(offset+len(rows)-1)+"/*")
	}
	writeJSON(w, http.StatusOK, project(rows, query.Get("select")))
}

func (s *Server) selectVerified(r *http.Request, offset, limit int) ([]*store.Message, int, error) {
	total, err := s.Store.CountVerified(r.Context())
	if err != nil {
		return nil, 0, err
	}
	if limit < 0 {
		limit = total - offset
	}
	rows, err := s.Store.FetchVerified(r.Context(), offset, limit)
	return rows, total, err
}

func (s *Server) selectAll(r *http.Request, filter string, offset, limit int) ([]*store.Message, int, error) {
	all, err := s.Store.List(r.Context())
	if err != nil {
		return nil, 0, err
	}
	if filter == "eq.false" {
		unverified := make([]*store.Message, 0, len(all))
		for _, message := range all {
			if !message.Verified {
				unverified = append(unverified, message)
			}
		}
		all = unverified
	}
	total := len(all)
	if offset >= total || limit == 0 {
		return []*store.Message{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Query().Get("id"), "eq.")
	if id == "" {
		writeError(w, http.StatusBadRequest, "21000", "UPDATE requires an id filter")
		return
	}
	var input verifyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Verified == nil {
		writeError(w, http.StatusBadRequest, "PGRST102", "body must set verified")
		return
	}
	err := s.Store.Verify(r.Context(), id, *input.Verified)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "PGRST116", "no message with id "+id)
		return
	}
	if err != nil {
		s.log.WithError(err).Error("failed to verify message")
		writeError(w, http.StatusInternalServerError, "XX000", "failed to verify message")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New("invalid integer")
	}
	return n, nil
}

// project keeps only the selected columns of each row; "*" or an empty
// select returns every column.
func project(rows []*store.Message, selectParam string) []map[string]interface{} {
	columns := strings.Split(selectParam, ",")
	all := selectParam == "" || selectParam == "*"
	result := make([]map[string]interface{}, 0, len(rows))
	for _, message := range rows {
		full := map[string]interface{}{
			"id":         message.ID,
			"content":    message.Content,
			"verified":   message.Verified,
			"created_at": message.CreatedAt,
		}
		if all {
			result = append(result, full)
			continue
		}
		row := map[string]interface{}{}
		for _, column := range columns {
			column = strings.TrimSpace(column)
			if value, ok := full[column]; ok {
				row[column] = value
			}
		}
		result = append(result, row)
	}
	return result
}
