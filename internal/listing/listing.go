// Package listing provides the pure sort and filter utilities used by
// authorization-gated reimbursement lists.
package listing

import (
	"log"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/usstm/unionclient/internal/session"
)

// Reimbursement item statuses as reported by the backend.
const (
	StatusUnconfirmed = "UNCONFIRMED"
	StatusConfirmed   = "CONFIRMED"
	StatusRejected    = "REJECTED"
	StatusPaid        = "PAID"
)

// Item is one expense or invoice row in a reimbursement listing.
type Item struct {
	ItemID      string             `json:"item_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Status      string             `json:"status"`
	Amount      int64              `json:"amount"` // minor currency units
	Student     *session.Student   `json:"student,omitempty"`
	Committee   *session.Committee `json:"committee,omitempty"` // nil for personal expenses
	CreatedAt   string             `json:"created_at"`
}

// SortByCreatedAt returns the items stably sorted by their created_at
// timestamp, newest first unless descending is false. A pair where either
// timestamp fails to parse keeps its relative order; parse failures are
// logged unless ignoreErrors is set. Nil input yields an empty list.
func SortByCreatedAt(items []Item, descending bool, ignoreErrors bool) []Item {
	if items == nil {
		if !ignoreErrors {
			log.Printf("sort by created_at: no items to sort")
		}
		return []Item{}
	}
	if len(items) == 0 {
		return items
	}

	sorted := slices.Clone(items)
	sort.SliceStable(sorted, func(i, j int) bool {
		left, leftOK := parseCreatedAt(sorted[i].CreatedAt, ignoreErrors)
		right, rightOK := parseCreatedAt(sorted[j].CreatedAt, ignoreErrors)
		if !leftOK || !rightOK {
			return false
		}
		if descending {
			return left.After(right)
		}
		return left.Before(right)
	})
	return sorted
}

// FilterItems keeps the items matching both the free-text search and the
// status filter. Empty search and empty statuses pass everything through
// unchanged. The search matches case-insensitively against the item title,
// description, and submitting student's first name.
func FilterItems(items []Item, search string, statuses []string) []Item {
	if search == "" && len(statuses) == 0 {
		return items
	}

	needle := strings.ToLower(search)
	filtered := make([]Item, 0, len(items))
	for _, item := range items {
		if search != "" && !strings.Contains(searchText(item), needle) {
			continue
		}
		if len(statuses) > 0 && !slices.Contains(statuses, item.Status) {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

func searchText(item Item) string {
	firstName := ""
	if item.Student != nil {
		firstName = item.Student.FirstName
	}
	return strings.ToLower(item.Title + item.Description + firstName)
}

func parseCreatedAt(value string, ignoreErrors bool) (time.Time, bool) {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		if !ignoreErrors {
			log.Printf("sort by created_at: unparseable timestamp %q", value)
		}
		return time.Time{}, false
	}
	return parsed, true
}
