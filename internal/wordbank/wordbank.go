package wordbank

import (
	"encoding/json"
	"os"
	"strconv"

	"go.uber.org/zap"
)

// Bank читает файл слов на каждый запрос: правка файла видна без рестарта.
type Bank struct {
	path string
	log  *zap.Logger
}

func New(path string, log *zap.Logger) *Bank {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bank{path: path, log: log}
}

func (b *Bank) Path() string { return b.path }

// Words никогда не возвращает ошибку: любой сбой чтения даёт пустой список.
func (b *Bank) Words(grade int) []string {
	raw, err := os.ReadFile(b.path)
	if err != nil {
		b.log.Warn("read word bank", zap.String("path", b.path), zap.Error(err))
		return []string{}
	}
	// разбираем только нужный класс: битые соседние ключи не мешают
	var byGrade map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byGrade); err != nil {
		b.log.Warn("decode word bank", zap.String("path", b.path), zap.Error(err))
		return []string{}
	}
	entry, ok := byGrade[strconv.Itoa(grade)]
	if !ok {
		return []string{}
	}
	var words []string
	if err := json.Unmarshal(entry, &words); err != nil {
		b.log.Warn("decode word bank grade", zap.String("path", b.path), zap.Int("grade", grade), zap.Error(err))
		return []string{}
	}
	if words == nil {
		return []string{}
	}
	return words
}
