// Package models содержит доменные структуры сервиса: пользователя с встроенной подпиской,
// тарифные пакеты, закрытые материалы и незавершенные регистрации.
package models

import "time"

// Role — роль пользователя. Роли упорядочены: user < admin < owner.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

// Rank возвращает порядковый номер роли; неизвестная роль приравнивается к user.
func (r Role) Rank() int {
	switch r {
	case RoleOwner:
		return 2
	case RoleAdmin:
		return 1
	default:
		return 0
	}
}

// AtLeast сообщает, что роль не ниже other.
func (r Role) AtLeast(other Role) bool {
	return r.Rank() >= other.Rank()
}

// Valid сообщает, что роль входит в известный набор.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin || r == RoleOwner
}

// User представляет зарегистрированного пользователя.
//
// RefreshToken хранит единственный действующий refresh-токен; пустая строка означает,
// что активной сессии нет. Subscription равна nil, если подписки нет.
type User struct {
	ID           string        // Уникальный идентификатор (uuid)
	Name         string        // Отображаемое имя
	Email        string        // Электронная почта в нижнем регистре, уникальна
	PasswordHash string        // bcrypt-хеш пароля
	Role         Role          // Роль пользователя
	Avatar       string        // Ссылка на аватар
	RefreshToken string        // Текущий refresh-токен
	Subscription *Subscription // Текущая подписка
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser — поля пользователя, которые можно отдавать клиенту.
type PublicUser struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
	Role   Role   `json:"role"`
}

// Public возвращает публичное представление пользователя без хеша пароля и токенов.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.Avatar,
		Role:   u.Role,
	}
}

// ActiveSubscription возвращает подписку, если она есть и не истекла на момент now.
func (u *User) ActiveSubscription(now time.Time) *Subscription {
	if u.Subscription == nil || !u.Subscription.Active(now) {
		return nil
	}
	return u.Subscription
}

// PendingRegistration — незавершенная регистрация, ключом служит email.
type PendingRegistration struct {
	Email     string
	Attempts  int
	AttemptAt time.Time
}
