package model

import "time"

// Transaction categories as stored by the accounting UI.
const (
	CategoryIncome  = "収入"
	CategoryExpense = "経費"
)

// WorkLocation is a named place a user clocks in at.
type WorkLocation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// AttendanceRecord is one working day of one user.
type AttendanceRecord struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	WorkLocationID string     `json:"workLocationId"`
	Date           time.Time  `json:"date"`
	ClockIn        *time.Time `json:"clockIn"`
	ClockOut       *time.Time `json:"clockOut"`
	WorkMinutes    *int       `json:"workMinutes"`
	Note           string     `json:"note"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// WorkMinutesBetween is floor((out-in)/1m) when both are set, nil otherwise.
func WorkMinutesBetween(in, out *time.Time) *int {
	if in == nil || out == nil {
		return nil
	}
	m := int(out.Sub(*in) / time.Minute)
	return &m
}

// Worked reports whether both clock-in and clock-out are present.
func (r *AttendanceRecord) Worked() bool {
	return r.ClockIn != nil && r.ClockOut != nil
}

// Transaction is a ledger entry. Amounts are integer yen.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Date        time.Time `json:"date"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	ReceiptID   string    `json:"receiptId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// OcrData holds fields already extracted from a receipt image.
type OcrData struct {
	StoreName   string     `json:"storeName"`
	Date        *time.Time `json:"date"`
	TotalAmount int64      `json:"totalAmount"`
	TaxAmount   int64      `json:"taxAmount"`
	RawText     string     `json:"rawText,omitempty"`
}

// Receipt is an uploaded receipt image with optional OCR fields.
type Receipt struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	TransactionID string    `json:"transactionId,omitempty"`
	ImagePath     string    `json:"imagePath"`
	ImageURL      string    `json:"imageUrl"`
	OCR           *OcrData  `json:"ocrData"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Pomodoro modes and completion statuses.
const (
	ModeWork       = "work"
	ModeShortBreak = "short_break"
	ModeLongBreak  = "long_break"

	StatusCompleted   = "completed"
	StatusInterrupted = "interrupted"
)

// PomodoroSession is a single work or break interval.
type PomodoroSession struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	Mode             string     `json:"mode"`
	Category         string     `json:"category"`
	DurationMinutes  int        `json:"durationMinutes"`
	CompletionStatus string     `json:"completionStatus"`
	StartedAt        time.Time  `json:"startedAt"`
	EndedAt          *time.Time `json:"endedAt"`
	CalendarEventID  *string    `json:"calendarEventId"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// AccountingSettings are per-user overrides for KPI computation.
type AccountingSettings struct {
	UserID               string `json:"userId"`
	BlueReturnDeduction  int64  `json:"blueReturnDeduction"`
	DependentIncomeLimit int64  `json:"dependentIncomeLimit"`
}
