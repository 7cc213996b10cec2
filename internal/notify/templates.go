package notify

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/mpetrov/storefront/internal/models"
)

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`Hello {{.Order.CustomerName}},

Thank you for your order {{.Order.OrderNumber}}.

Items:
{{range .Order.Items}}  - {{.Name}} x{{.Quantity}} @ {{printf "%.2f" .Price}}
{{end}}
Total: {{printf "%.2f" .Order.TotalAmount}}

We will let you know as soon as it ships.
`))

var statusChangeTmpl = template.Must(template.New("status_change").Parse(`Hello {{.Order.CustomerName}},

Your order {{.Order.OrderNumber}} is now {{.Order.Status}}.
{{if .Order.TrackingNumber}}
Tracking number: {{.Order.TrackingNumber}}
{{end}}`))

type templateData struct {
	Order *models.Order
}

// BuildOrderConfirmation renders the confirmation mail into an outbox row
// ready to be committed alongside the order.
func BuildOrderConfirmation(order *models.Order, now time.Time) (*models.Notification, error) {
	var body bytes.Buffer
	if err := confirmationTmpl.Execute(&body, templateData{Order: order}); err != nil {
		return nil, err
	}
	return &models.Notification{
		ID:            uuid.New(),
		Kind:          models.NotificationOrderConfirmation,
		OrderNumber:   order.OrderNumber,
		Recipient:     order.CustomerEmail,
		Subject:       fmt.Sprintf("Order %s confirmed", order.OrderNumber),
		Body:          body.String(),
		Status:        models.NotificationPending,
		NextAttemptAt: now,
	}, nil
}

func BuildStatusChange(order *models.Order, now time.Time) (*models.Notification, error) {
	var body bytes.Buffer
	if err := statusChangeTmpl.Execute(&body, templateData{Order: order}); err != nil {
		return nil, err
	}
	return &models.Notification{
		ID:            uuid.New(),
		Kind:          models.NotificationStatusChange,
		OrderNumber:   order.OrderNumber,
		Recipient:     order.CustomerEmail,
		Subject:       fmt.Sprintf("Order %s update: %s", order.OrderNumber, order.Status),
		Body:          body.String(),
		Status:        models.NotificationPending,
		NextAttemptAt: now,
	}, nil
}
