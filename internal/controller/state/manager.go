package state

import (
	"maps"
	"sync"
)

// Manager хранит состояние диалога каждого пользователя по telegramID
type Manager struct {
	mu     sync.RWMutex
	states map[int64]*UserData
}

func NewManager() *Manager {
	return &Manager{
		states: make(map[int64]*UserData),
	}
}

// GetState текущее состояние пользователя
func (sm *Manager) GetState(telegramID int64) UserState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData, exists := sm.states[telegramID]; exists {
		return userData.State
	}
	return StateNone
}

// SetState StateNone удаляет запись вместе с данными
func (sm *Manager) SetState(telegramID int64, state UserState) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if state == StateNone {
		delete(sm.states, telegramID)
		return
	}
	sm.entry(telegramID).State = state
}

func (sm *Manager) GetData(telegramID int64, key string) (any, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData, exists := sm.states[telegramID]; exists {
		value, ok := userData.Data[key]
		return value, ok
	}
	return nil, false
}

func (sm *Manager) SetData(telegramID int64, key string, value any) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.entry(telegramID).Data[key] = value
}

// GetInt64 значение ключа, если оно есть и имеет тип int64
func (sm *Manager) GetInt64(telegramID int64, key string) (int64, bool) {
	value, ok := sm.GetData(telegramID, key)
	if !ok {
		return 0, false
	}
	n, ok := value.(int64)
	return n, ok
}

func (sm *Manager) GetString(telegramID int64, key string) (string, bool) {
	value, ok := sm.GetData(telegramID, key)
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

// ClearState очищает состояние и данные пользователя
func (sm *Manager) ClearState(telegramID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.states, telegramID)
}

// GetAllData копия данных диалога
func (sm *Manager) GetAllData(telegramID int64) map[string]any {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData, exists := sm.states[telegramID]; exists {
		return maps.Clone(userData.Data)
	}
	return nil
}

func (sm *Manager) entry(telegramID int64) *UserData {
	userData, exists := sm.states[telegramID]
	if !exists {
		userData = &UserData{State: StateNone, Data: make(map[string]any)}
		sm.states[telegramID] = userData
	}
	return userData
}
