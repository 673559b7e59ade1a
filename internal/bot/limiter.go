package bot

import "sync"

// ChatLimiter не даёт двум командам одного чата выполняться одновременно.
// Мьютекс чата живёт, пока кто-то его держит или ждёт, потом удаляется.
type ChatLimiter struct {
	mu   sync.Mutex
	byID map[int64]*chatLock
}

type chatLock struct {
	mu      sync.Mutex
	holders int
}

func NewChatLimiter() *ChatLimiter {
	return &ChatLimiter{byID: make(map[int64]*chatLock)}
}

func (l *ChatLimiter) Lock(chatID int64) func() {
	l.mu.Lock()
	cl, ok := l.byID[chatID]
	if !ok {
		cl = &chatLock{}
		l.byID[chatID] = cl
	}
	cl.holders++
	l.mu.Unlock()

	cl.mu.Lock()
	return func() {
		cl.mu.Unlock()
		l.mu.Lock()
		cl.holders--
		if cl.holders == 0 {
			delete(l.byID, chatID)
		}
		l.mu.Unlock()
	}
}

func (l *ChatLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byID)
}
