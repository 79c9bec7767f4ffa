package core

import (
	"errors"
	"strings"
)

const (
	Expense TransactionType = "Expense"
	Income  TransactionType = "Income"

	StatusPlanning ClassStatus = "Planning"
	StatusReady    ClassStatus = "Ready"
	StatusDone     ClassStatus = "Done"

	EventPublic EventType = "Public"
	EventStaff  EventType = "Staff"
	EventRepair EventType = "Repair"
)

type (
	TransactionType string
	ClassStatus     string
	EventType       string

	// StatEntry records one day of visitor statistics. The date is the
	// natural key: at most one entry per calendar day.
	StatEntry struct {
		Date         Date `json:"date"`
		Visitors     int  `json:"visitors"`
		Engagements  int  `json:"engagements"`
		Participants int  `json:"participants"`
		Offsite      int  `json:"offsite"`
	}

	// Transaction is one ledger line. Cost is always positive; Type decides
	// whether it spends or replenishes the budget.
	Transaction struct {
		ID   string          `json:"id"`
		Date Date            `json:"date"`
		Item string          `json:"item"`
		Type TransactionType `json:"type"`
		Cost Money           `json:"cost"`
	}

	ClassItem struct {
		ID     string      `json:"id"`
		Name   string      `json:"name"`
		Date   Date        `json:"date"`
		Status ClassStatus `json:"status"`
		Notes  string      `json:"notes"`
	}

	EventItem struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		Date        Date      `json:"date"`
		Time        string    `json:"time"`
		Type        EventType `json:"type"`
		Description string    `json:"description"`
	}

	Task struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		Completed bool   `json:"completed"`
	}

	ShoppingItem struct {
		ID       string `json:"id"`
		Item     string `json:"item"`
		Quantity string `json:"quantity"`
	}

	// ActivatorDocument is the singleton monthly featured project. It is only
	// ever replaced wholesale, never patched field by field.
	ActivatorDocument struct {
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		Materials    []string `json:"materials"`
		Instructions []string `json:"instructions"`
		ImageURL     string   `json:"imageUrl"`
		Difficulty   string   `json:"difficulty"`
		Month        string   `json:"month"`
	}

	// SuggestedProject is an externally generated project candidate, cached
	// at most once per calendar day (GeneratedOn).
	SuggestedProject struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Materials   []string `json:"materials"`
		Difficulty  string   `json:"difficulty"`
		Vibe        string   `json:"vibe"`
		GeneratedOn Date     `json:"generatedOn"`
	}
)

var (
	ErrEmptyItem        = errors.New("empty item description")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyText        = errors.New("empty text")
	ErrEmptyTitle       = errors.New("empty title")
	ErrInvalidType      = errors.New("invalid type")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrNegativeCount    = errors.New("negative count")
	ErrMissingSuggested = errors.New("no suggested project available")
)

func (t TransactionType) Valid() bool {
	return t == Expense || t == Income
}

func (s ClassStatus) Valid() bool {
	return s == StatusPlanning || s == StatusReady || s == StatusDone
}

func (t EventType) Valid() bool {
	return t == EventPublic || t == EventStaff || t == EventRepair
}

func (e StatEntry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.Visitors < 0 || e.Engagements < 0 || e.Participants < 0 || e.Offsite < 0 {
		return ErrNegativeCount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Item) == "" {
		return ErrEmptyItem
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	return t.Cost.Validate()
}

// SignedCents is the transaction's contribution to total spend: positive for
// an expense, negative for income.
func (t Transaction) SignedCents() int64 {
	if t.Type == Income {
		return -t.Cost.Cents
	}
	return t.Cost.Cents
}

func (c ClassItem) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if err := c.Date.Validate(); err != nil {
		return err
	}
	if !c.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

func (e EventItem) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if !e.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Text) == "" {
		return ErrEmptyText
	}
	return nil
}

func (s ShoppingItem) Validate() error {
	if strings.TrimSpace(s.Item) == "" {
		return ErrEmptyItem
	}
	return nil
}

func (a ActivatorDocument) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Validate checks the required fields of a provider response. A suggestion
// missing any of them is treated as a failed fetch.
func (p SuggestedProject) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("suggestion missing title")
	}
	if strings.TrimSpace(p.Description) == "" {
		return errors.New("suggestion missing description")
	}
	if len(p.Materials) == 0 {
		return errors.New("suggestion missing materials")
	}
	if strings.TrimSpace(p.Difficulty) == "" {
		return errors.New("suggestion missing difficulty")
	}
	if strings.TrimSpace(p.Vibe) == "" {
		return errors.New("suggestion missing vibe")
	}
	return nil
}

// PromotionInstructions replace the suggestion's own content when a suggested
// project is promoted to the Activator Document.
var PromotionInstructions = []string{
	"Step 1: Gather materials",
	"Step 2: Prototype design",
	"Step 3: Refine and build",
}

// PromotionImageURL is the stock hero image applied on promotion.
const PromotionImageURL = "https://images.unsplash.com/photo-1513364238782-bc04803b0704?auto=format&fit=crop&q=80&w=800"

// DefaultActivator seeds the singleton document on first run, before anything
// has been persisted.
func DefaultActivator() ActivatorDocument {
	return ActivatorDocument{
		Title:        "Eco-Friendly Prototyping",
		Description:  "Focusing on sustainable materials and bioplastics this month.",
		Materials:    []string{"PLA Filament", "Recycled Cardboard", "Natural Dyes"},
		Instructions: []string{"Step 1: Design in CAD", "Step 2: Print with bio-materials", "Step 3: Test durability"},
		ImageURL:     "https://images.unsplash.com/photo-1581092160607-ee22621dd758?auto=format&fit=crop&q=80&w=1200",
		Difficulty:   "Intermediate",
		Month:        "May",
	}
}
