package auth

import (
	"context"
	"sync"
)

// MemoryUsers is an in-process UserTxStore for tests and demos.
type MemoryUsers struct {
	mu    sync.Mutex
	users map[string]User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[string]User)}
}

func (m *MemoryUsers) WithUserTx(_ context.Context, fn func(UserStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make(map[string]User, len(m.users))
	for k, v := range m.users {
		snapshot[k] = v
	}
	if err := fn(memoryUsersView{m}); err != nil {
		m.users = snapshot
		return err
	}
	return nil
}

func (m *MemoryUsers) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memoryUsersView{m}.GetUserByEmail(ctx, email)
}

func (m *MemoryUsers) CountUsers(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memoryUsersView{m}.CountUsers(ctx)
}

func (m *MemoryUsers) InsertUser(ctx context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memoryUsersView{m}.InsertUser(ctx, u)
}

// memoryUsersView is the unlocked store handed to WithUserTx bodies.
type memoryUsersView struct{ m *MemoryUsers }

func (v memoryUsersView) GetUserByEmail(_ context.Context, email string) (*User, error) {
	u, ok := v.m.users[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (v memoryUsersView) CountUsers(context.Context) (int, error) {
	return len(v.m.users), nil
}

func (v memoryUsersView) InsertUser(_ context.Context, u User) error {
	if _, ok := v.m.users[u.Email]; ok {
		return ErrEmailTaken
	}
	v.m.users[u.Email] = u
	return nil
}
