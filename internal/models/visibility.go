package models

import (
	"sort"
	"strings"
)

// PublicSentinel специальный идентификатор "для всех"
const PublicSentinel = "all"

// VisibilitySet множество пользователей, которым доступна ссылка.
// В бизнес-логике всегда используется как множество; строка через пробел
// появляется только на границе с хранилищем.
type VisibilitySet map[string]struct{}

// ParseVisibilitySet разбирает строку из хранилища в множество.
// Пустые токены игнорируются.
func ParseVisibilitySet(raw string) VisibilitySet {
	set := make(VisibilitySet)
	for _, user := range strings.Fields(raw) {
		set[user] = struct{}{}
	}
	return set
}

// NewVisibilitySet формирует множество при первом создании ссылки.
// Без реальных токенов в запросе ссылка публичная; создатель сохраняется
// рядом с сентинелом, чтобы не потеряться при последующем сужении.
// С токенами - создатель плюс перечисленные пользователи.
func NewVisibilitySet(creator, requested string) VisibilitySet {
	tokens := strings.Fields(requested)
	set := make(VisibilitySet)
	if len(tokens) == 0 {
		set[PublicSentinel] = struct{}{}
		if creator != "" {
			set[creator] = struct{}{}
		}
		return set
	}

	if creator != "" {
		set[creator] = struct{}{}
	}
	for _, user := range tokens {
		set[user] = struct{}{}
	}
	return set
}

// Merge объединяет существующее множество с новым запросом.
// Правило сужения: если ссылка была публичной, а новый запрос
// содержит реальные токены и сам не содержит "all",
// то "all" удаляется - повторная приватная раздача сужает публичную ссылку.
func (s VisibilitySet) Merge(creator, requested string) VisibilitySet {
	merged := make(VisibilitySet, len(s)+2)
	for user := range s {
		merged[user] = struct{}{}
	}

	wasPublic := s.IsPublic()
	requestsPublic := false
	hasRealToken := false

	for _, user := range strings.Fields(requested) {
		if user == PublicSentinel {
			requestsPublic = true
		}
		hasRealToken = true
		merged[user] = struct{}{}
	}
	if creator != "" {
		merged[creator] = struct{}{}
	}

	if wasPublic && !requestsPublic && hasRealToken {
		delete(merged, PublicSentinel)
	}

	return merged
}

// IsPublic проверяет наличие сентинела "all"
func (s VisibilitySet) IsPublic() bool {
	_, ok := s[PublicSentinel]
	return ok
}

// Contains проверяет, есть ли у пользователя доступ к ссылке
func (s VisibilitySet) Contains(user string) bool {
	if s.IsPublic() {
		return true
	}
	_, ok := s[user]
	return ok
}

// String сериализует множество для хранилища.
// Порядок не имеет значения, сортировка только ради детерминизма записи.
func (s VisibilitySet) String() string {
	users := make([]string, 0, len(s))
	for user := range s {
		users = append(users, user)
	}
	sort.Strings(users)
	return strings.Join(users, " ")
}
