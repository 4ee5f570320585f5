package dialog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/seu-repo/dining-concierge/internal/domain"
	"github.com/seu-repo/dining-concierge/internal/observability/telemetry"
	"github.com/seu-repo/dining-concierge/internal/ports"
)

// DiningSuggestionsIntent is the intent served by the reservation form
const DiningSuggestionsIntent = "DiningSuggestionsIntent"

const tracerName = "dining-concierge/dialog"

var (
	// ErrUnsupportedIntent means no handler is registered for the intent name
	ErrUnsupportedIntent = errors.New("intent not supported")
	// ErrUnknownInvocation means the invocation source is neither dialog nor fulfillment
	ErrUnknownInvocation = errors.New("unknown invocation source")
)

// IntentHandler answers one turn for a single intent
type IntentHandler func(ctx context.Context, req *domain.IntentRequest) (domain.Response, error)

// Manager routes code-hook turns to intent handlers
type Manager struct {
	handlers  map[string]IntentHandler
	submitter ports.OrderSubmitter
	location  *time.Location
	now       func() time.Time
	log       *zap.Logger
}

type Option func(*Manager)

// WithClock overrides the wall clock used for date and time validation
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a manager with the dining suggestions intent registered
func NewManager(submitter ports.OrderSubmitter, location *time.Location, log *zap.Logger, opts ...Option) *Manager {
	if location == nil {
		location = time.UTC
	}

	m := &Manager{
		handlers:  make(map[string]IntentHandler),
		submitter: submitter,
		location:  location,
		now:       time.Now,
		log:       log,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.Register(DiningSuggestionsIntent, m.DiningSuggestions)
	return m
}

// Register binds an intent name to its handler, replacing any previous one
func (m *Manager) Register(intentName string, handler IntentHandler) {
	m.handlers[intentName] = handler
}

// Dispatch is the code-hook entry point
func (m *Manager) Dispatch(ctx context.Context, req *domain.IntentRequest) (domain.Response, error) {
	intentName := req.CurrentIntent.Name

	ctx, span := otel.Tracer(tracerName).Start(ctx, "dialog.Dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("dialog.intent", intentName),
		attribute.String("dialog.invocation_source", string(req.InvocationSource)),
	)

	m.log.Debug("dispatch",
		zap.String("user_id", req.UserID),
		zap.String("intent", intentName),
		zap.String("bot", req.Bot.Name),
	)

	handler, ok := m.handlers[intentName]
	if !ok {
		telemetry.UnsupportedIntentsTotal.Inc()
		m.log.Error("No handler registered for intent", zap.String("intent", intentName))
		err := fmt.Errorf("%w: %s", ErrUnsupportedIntent, intentName)
		span.SetStatus(codes.Error, err.Error())
		return domain.Response{}, err
	}

	resp, err := handler(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.Response{}, err
	}

	span.SetAttributes(attribute.String("dialog.action", string(resp.Action.Type())))
	telemetry.DialogActionsTotal.WithLabelValues(intentName, string(resp.Action.Type())).Inc()
	return resp, nil
}

// DiningSuggestions validates the reservation form while it is being filled
// and submits the order once the engine reaches fulfillment.
func (m *Manager) DiningSuggestions(ctx context.Context, req *domain.IntentRequest) (domain.Response, error) {
	slots := req.CurrentIntent.Slots
	session := req.SessionAttributes.OrEmpty()

	switch req.InvocationSource {
	case domain.InvocationDialogCodeHook:
		result := Validate(slots, NewTimeContext(m.now(), m.location))
		if !result.IsValid {
			telemetry.SlotValidationFailuresTotal.WithLabelValues(string(result.ViolatedSlot)).Inc()
			m.log.Info("Slot rejected",
				zap.String("user_id", req.UserID),
				zap.String("slot", string(result.ViolatedSlot)),
			)

			elicited := slots.Clone()
			elicited.Clear(result.ViolatedSlot)
			return domain.Response{Action: domain.ElicitSlot{
				SessionAttributes: session,
				IntentName:        req.CurrentIntent.Name,
				Slots:             elicited,
				SlotToElicit:      result.ViolatedSlot,
				Message:           result.Message,
			}}, nil
		}

		return domain.Response{Action: domain.Delegate{
			SessionAttributes: session,
			Slots:             slots,
		}}, nil

	case domain.InvocationFulfillmentCodeHook:
		order := domain.NewOrderRecord(slots)
		receipt, err := m.submitter.Submit(ctx, order)
		if err != nil {
			return domain.Response{}, err
		}

		m.log.Info("Order recorded",
			zap.String("user_id", req.UserID),
			zap.String("queue", receipt.Queue),
			zap.String("location", order.Location),
		)

		return domain.Response{Action: domain.Close{
			SessionAttributes: session,
			FulfillmentState:  domain.FulfillmentFulfilled,
			Message: domain.PlainText(fmt.Sprintf(
				"Thanks, your order for restaurants in %s has been recorded. "+
					"We will notify you details via a message on %s", order.Location, order.PhoneNumber)),
		}}, nil

	default:
		return domain.Response{}, fmt.Errorf("%w: %q", ErrUnknownInvocation, req.InvocationSource)
	}
}
