package handler

import (
	"time"

	"github.com/rl1809/inventory-tracker/internal/core/domain"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type StockRequest struct {
	Location  string `json:"location"`
	Delta     int    `json:"delta"`
	Operation string `json:"operation"`
	RequestID string `json:"request_id"`
}

// resolveDelta prefers an explicit operation over a raw delta.
func (r StockRequest) resolveDelta() int {
	switch domain.Operation(r.Operation) {
	case domain.OperationAdd:
		return 1
	case domain.OperationRemove:
		return -1
	default:
		return r.Delta
	}
}

type LogoRequest struct {
	Logo string `json:"logo"`
}

type ItemDTO struct {
	ID        string `json:"id"`
	Article   string `json:"article"`
	Location1 string `json:"location1"`
	Location2 string `json:"location2"`
	Status1   string `json:"status1"`
	Status2   string `json:"status2"`
	Stock1    int    `json:"stock1"`
	Stock2    int    `json:"stock2"`
	Barcode   string `json:"barcode"`
}

type LogEntryDTO struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Article       string    `json:"article"`
	Location      string    `json:"location"`
	Operation     string    `json:"operation"`
	PreviousStock int       `json:"previousStock"`
	NewStock      int       `json:"newStock"`
	User          string    `json:"user,omitempty"`
}

type MutationDTO struct {
	State     string       `json:"state"`
	Operation string       `json:"operation"`
	Item      ItemDTO      `json:"item"`
	LogEntry  *LogEntryDTO `json:"logEntry,omitempty"`
	Warning   string       `json:"warning,omitempty"`
}

type NotificationDTO struct {
	Severity    string    `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Time        time.Time `json:"time"`
}

func toItemDTO(item domain.Item) ItemDTO {
	return ItemDTO{
		ID:        item.ID,
		Article:   item.Article,
		Location1: item.Location1,
		Location2: item.Location2,
		Status1:   string(item.Status1),
		Status2:   string(item.Status2),
		Stock1:    item.Stock1,
		Stock2:    item.Stock2,
		Barcode:   item.Barcode,
	}
}

func toItemDTOs(items []domain.Item) []ItemDTO {
	out := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toItemDTO(item))
	}
	return out
}

func toLogEntryDTO(entry domain.LogEntry) LogEntryDTO {
	return LogEntryDTO{
		ID:            entry.ID,
		Timestamp:     entry.Timestamp,
		Article:       entry.Article,
		Location:      entry.Location,
		Operation:     string(entry.Operation),
		PreviousStock: entry.PreviousStock,
		NewStock:      entry.NewStock,
		User:          entry.User,
	}
}

func toLogEntryDTOs(logs []domain.LogEntry) []LogEntryDTO {
	out := make([]LogEntryDTO, 0, len(logs))
	for _, entry := range logs {
		out = append(out, toLogEntryDTO(entry))
	}
	return out
}

func toMutationDTO(m *domain.Mutation) MutationDTO {
	dto := MutationDTO{
		State:     string(m.State),
		Operation: string(m.Operation()),
		Item:      toItemDTO(m.After),
	}
	if m.State == domain.MutationRolledBack {
		dto.Item = toItemDTO(m.Before)
	}
	if m.LogEntry != nil {
		entry := toLogEntryDTO(*m.LogEntry)
		dto.LogEntry = &entry
	}
	if m.LogWarning != nil {
		dto.Warning = m.LogWarning.Error()
	}
	return dto
}
