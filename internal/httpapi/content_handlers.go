package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Spok95/school-words/internal/apperr"
	"github.com/Spok95/school-words/internal/ctxutil"
	"github.com/Spok95/school-words/internal/hint"
	"github.com/Spok95/school-words/internal/metrics"
	"github.com/Spok95/school-words/internal/translate"
	"go.uber.org/zap"
)

type wordsResponse struct {
	Grade int      `json:"grade"`
	Count int      `json:"count"`
	Words []string `json:"words"`
}

type translateRequest struct {
	Text   string `json:"text"`
	Target string `json:"target"`
}

type translateResponse struct {
	Translated string `json:"translated"`
}

type hintRequest struct {
	Word string `json:"word"`
}

type hintResponse struct {
	Hint string `json:"hint"`
}

func (a *API) apiWords(w http.ResponseWriter, r *http.Request) error {
	u, ok := ctxutil.User(r.Context())
	if !ok {
		return apperr.ErrLoginRequired
	}
	words := a.words.Words(u.Grade)
	return respond(w, wordsResponse{Grade: u.Grade, Count: len(words), Words: words})
}

func (a *API) apiTranslate(w http.ResponseWriter, r *http.Request) error {
	var req translateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return apperr.ErrMissingText
	}
	target := strings.TrimSpace(req.Target)
	if target == "" {
		target = translate.DefaultTarget
	}

	out, err := a.translator.Translate(r.Context(), text, target)
	if err != nil {
		metrics.TranslateErrors.Inc()
		a.log.Warn("translate failed", zap.String("target", target), zap.Error(err))
		return fmt.Errorf("%w: %w", apperr.ErrTranslateFailed, err)
	}
	return respond(w, translateResponse{Translated: out})
}

func (a *API) apiHint(w http.ResponseWriter, r *http.Request) error {
	var req hintRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	word := strings.TrimSpace(req.Word)
	if word == "" {
		return apperr.ErrMissingWord
	}
	return respond(w, hintResponse{Hint: hint.Sentence(word)})
}
