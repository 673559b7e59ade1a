package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/Spok95/school-words/internal/apperr"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respond(w http.ResponseWriter, v any) error {
	writeJSON(w, http.StatusOK, v)
	return nil
}

// decodeJSON: пустое или битое тело: 400 Invalid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.ErrBadJSON
	}
	return nil
}

// flexInt принимает и число, и строку с числом: формы присылают класс строкой.
// Всё, что не разбирается, превращается в 0 и отсекается валидацией.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	*f = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = flexInt(n)
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && v == float64(int(v)) {
		*f = flexInt(int(v))
	}
	return nil
}

// flexBool: null, 0, "" и пустые коллекции дают false, остальное true.
// Если поля нет в теле, set остаётся false и берётся значение по умолчанию.
type flexBool struct {
	set   bool
	value bool
}

func (f *flexBool) UnmarshalJSON(b []byte) error {
	f.set = true
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case bool:
		f.value = x
	case float64:
		f.value = x != 0
	case string:
		f.value = x != ""
	case []any:
		f.value = len(x) > 0
	case map[string]any:
		f.value = len(x) > 0
	default:
		f.value = false
	}
	return nil
}

func (f flexBool) Or(def bool) bool {
	if !f.set {
		return def
	}
	return f.value
}
