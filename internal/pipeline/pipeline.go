// Package pipeline correlates bank notifications with the user's replies and
// records the resulting expenses.
//
// A recognized notification is parked in the pending store and the user is
// asked what it was. The next reply from that chat is classified, merged with
// the parked transaction and appended to the ledger.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/spice-relay/internal/common"
	"github.com/Veraticus/spice-relay/internal/model"
	"github.com/Veraticus/spice-relay/internal/service"
)

// Messages sent to the user.
const (
	MsgNothingPending    = "Nothing pending to categorize."
	MsgClassifyFailed    = "Sorry, I couldn't categorize that right now. Please try again."
	MsgLedgerFailed      = "I couldn't save that expense. Please try again."
	promptTemplate       = "You spent %s %s at '%s'. What was it?"
	confirmationTemplate = "Got it. Categorized as: %s"
)

// Deps are the collaborators of a Pipeline.
type Deps struct {
	Extractor  service.Extractor
	Classifier service.Classifier
	Store      service.PendingStore
	Notifier   service.Notifier
	Ledger     service.LedgerWriter
	Logger     *slog.Logger
	// Recipient is the chat that notifications are forwarded to.
	Recipient string
}

// Pipeline runs the notification and reply flows.
type Pipeline struct {
	extractor  service.Extractor
	classifier service.Classifier
	store      service.PendingStore
	notifier   service.Notifier
	ledger     service.LedgerWriter
	logger     *slog.Logger
	now        func() time.Time
	recipient  string
}

// New creates a pipeline. Every dependency is required.
func New(deps Deps) (*Pipeline, error) {
	switch {
	case deps.Extractor == nil:
		return nil, fmt.Errorf("%w: extractor", common.ErrMissingConfig)
	case deps.Classifier == nil:
		return nil, fmt.Errorf("%w: classifier", common.ErrMissingConfig)
	case deps.Store == nil:
		return nil, fmt.Errorf("%w: pending store", common.ErrMissingConfig)
	case deps.Notifier == nil:
		return nil, fmt.Errorf("%w: notifier", common.ErrMissingConfig)
	case deps.Ledger == nil:
		return nil, fmt.Errorf("%w: ledger", common.ErrMissingConfig)
	case deps.Recipient == "":
		return nil, fmt.Errorf("%w: recipient chat id", common.ErrMissingConfig)
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		extractor:  deps.Extractor,
		classifier: deps.Classifier,
		store:      deps.Store,
		notifier:   deps.Notifier,
		ledger:     deps.Ledger,
		logger:     logger,
		now:        time.Now,
		recipient:  deps.Recipient,
	}, nil
}

// NotificationStatus describes what happened to a notification.
type NotificationStatus int

// Notification outcomes.
const (
	NotificationIgnored NotificationStatus = iota
	NotificationPending
)

func (s NotificationStatus) String() string {
	switch s {
	case NotificationIgnored:
		return "ignored"
	case NotificationPending:
		return "pending"
	default:
		return "unknown"
	}
}

// NotificationOutcome is the result of HandleNotification.
type NotificationOutcome struct {
	Transaction model.PendingTransaction // set when Status is NotificationPending
	Reason      string                   // set when Status is NotificationIgnored
	Status      NotificationStatus
}

// HandleNotification extracts a transaction from a bank notification, parks
// it for the recipient and asks the recipient what it was.
//
// A notification that is not a charge has no side effects. A failed prompt is
// returned as an error but the transaction stays pending.
func (p *Pipeline) HandleNotification(ctx context.Context, text string) (NotificationOutcome, error) {
	switch res := p.extractor.Extract(ctx, text).(type) {
	case model.Recognized:
		txn := res.Pending(p.recipient, p.now())
		p.store.Set(txn)

		p.logger.Info("Transaction pending",
			"chat_id", txn.ChatID,
			"amount", txn.Amount.String(),
			"currency", txn.Currency,
			"merchant", txn.RawDescription)

		outcome := NotificationOutcome{Status: NotificationPending, Transaction: txn}

		msg := fmt.Sprintf(promptTemplate, txn.Amount.String(), txn.Currency, txn.RawDescription)
		if err := p.notifier.Send(ctx, p.recipient, msg); err != nil {
			p.logger.Error("Failed to prompt for transaction", "chat_id", p.recipient, "error", err)
			return outcome, fmt.Errorf("failed to send prompt: %w", err)
		}
		return outcome, nil

	case model.NotRecognized:
		p.logger.Debug("Notification ignored", "reason", res.Reason)
		return NotificationOutcome{Status: NotificationIgnored, Reason: res.Reason}, nil

	default:
		return NotificationOutcome{Status: NotificationIgnored, Reason: "unknown extraction result"}, nil
	}
}

// ReplyStatus describes what happened to a reply.
type ReplyStatus int

// Reply outcomes.
const (
	ReplySkipped ReplyStatus = iota
	ReplyRejected
	ReplyRecorded
)

func (s ReplyStatus) String() string {
	switch s {
	case ReplySkipped:
		return "skipped"
	case ReplyRejected:
		return "rejected"
	case ReplyRecorded:
		return "recorded"
	default:
		return "unknown"
	}
}

// ReplyOutcome is the result of HandleReply.
type ReplyOutcome struct {
	Expense model.CategorizedExpense // set when Status is ReplyRecorded
	Status  ReplyStatus
}

// HandleReply classifies a reply from chatID, merges it with the chat's pending
// transaction and appends the result to the ledger.
//
// Errors that the user was told about are returned as *common.UserError.
func (p *Pipeline) HandleReply(ctx context.Context, chatID, text string) (ReplyOutcome, error) {
	description := strings.TrimSpace(text)
	if description == "" {
		return ReplyOutcome{Status: ReplySkipped}, nil
	}

	txn, ok := p.store.Get(chatID)
	if !ok {
		p.tell(ctx, chatID, MsgNothingPending)
		return ReplyOutcome{Status: ReplyRejected}, common.NewUserError(MsgNothingPending, common.ErrNoPending)
	}

	category, err := p.classifier.Classify(ctx, description)
	if err != nil {
		p.logger.Error("Failed to classify reply", "chat_id", chatID, "error", err)
		p.tell(ctx, chatID, MsgClassifyFailed)
		return ReplyOutcome{Status: ReplyRejected}, common.NewUserError(MsgClassifyFailed, err)
	}

	expense := model.NewCategorizedExpense(txn, description, category, p.now())

	if err := p.ledger.Append(ctx, expense); err != nil {
		p.logger.Error("Failed to record expense", "chat_id", chatID, "expense_id", expense.ID, "error", err)
		// The write may have reached some ledgers. Retries reuse the ID.
		txn.ExpenseID = expense.ID
		p.store.Update(txn)
		p.tell(ctx, chatID, MsgLedgerFailed)
		return ReplyOutcome{Status: ReplyRejected}, common.NewUserError(MsgLedgerFailed, err)
	}

	if txn.ExpenseID != "" {
		txn.ExpenseID = ""
		p.store.Update(txn)
	}

	p.logger.Info("Expense recorded",
		"chat_id", chatID,
		"expense_id", expense.ID,
		"amount", expense.Amount.String(),
		"currency", expense.Currency,
		"category", expense.Category)

	p.tell(ctx, chatID, fmt.Sprintf(confirmationTemplate, category))

	return ReplyOutcome{Status: ReplyRecorded, Expense: expense}, nil
}

// tell sends a message and only logs a failure.
func (p *Pipeline) tell(ctx context.Context, chatID, text string) {
	if err := p.notifier.Send(ctx, chatID, text); err != nil {
		p.logger.Warn("Failed to send message", "chat_id", chatID, "error", err)
	}
}

// IsNoPending reports whether err is a reply that arrived with nothing pending.
func IsNoPending(err error) bool {
	return errors.Is(err, common.ErrNoPending)
}
