package service

import (
	"context"
	"slices"
	"sync"
)

// Loader загружает полный список с авторитетной стороны
type Loader[T any] func(ctx context.Context) ([]T, error)

// List локальная копия серверного списка. Каждая перезагрузка получает номер поколения;
// результат, пришедший после более новой перезагрузки, отбрасывается.
type List[T any] struct {
	mu         sync.Mutex
	load       Loader[T]
	generation uint64
	applied    uint64
	items      []T
}

func NewList[T any](load Loader[T]) *List[T] {
	return &List[T]{load: load}
}

// Reload заменяет содержимое целиком. applied = false если ответ устарел.
func (l *List[T]) Reload(ctx context.Context) (applied bool, err error) {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.mu.Unlock()

	items, err := l.load(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	l.items = items
	l.applied = gen
	return true, nil
}

// Items снимок текущего содержимого
func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.items)
}

// Generation номер последнего применённого ответа
func (l *List[T]) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.applied
}

// Find первый элемент, удовлетворяющий условию
func (l *List[T]) Find(match func(T) bool) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, item := range l.items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}
