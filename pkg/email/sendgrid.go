package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/sareemart/storefront/internal/config"
	"github.com/sareemart/storefront/internal/models"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Sender interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) error
}

type sendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendGridSender(cfg *config.SendGrid) Sender {
	return &sendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

// SendOrderConfirmation mails the buyer a summary of a freshly placed order.
func (s *sendGridSender) SendOrderConfirmation(_ context.Context, order *models.Order) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(order.FirstName+" "+order.LastName, order.Email)

	subject := fmt.Sprintf("Order confirmed: %s", order.OrderNumber)

	message := mail.NewV3Mail()
	message.SetFrom(from)

	personalization := mail.NewPersonalization()
	personalization.AddTos(to)
	personalization.Subject = subject
	message.AddPersonalizations(personalization)

	message.AddContent(mail.NewContent("text/plain", orderSummaryText(order)))

	response, err := s.client.Send(message)
	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
	}

	return nil
}

func orderSummaryText(order *models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Thank you for your order, %s!\n\n", order.FirstName)
	fmt.Fprintf(&b, "Order number: %s\n\n", order.OrderNumber)

	for _, item := range order.Items {
		fmt.Fprintf(&b, "%s x%d", item.ProductName, item.Quantity)

		if item.Size != nil {
			fmt.Fprintf(&b, " (size %s)", *item.Size)
		}

		fmt.Fprintf(&b, " - %.2f\n", item.Subtotal)
	}

	fmt.Fprintf(&b, "\nSubtotal: %.2f\n", order.Subtotal)
	fmt.Fprintf(&b, "Shipping: %.2f\n", order.ShippingFee)
	fmt.Fprintf(&b, "Total: %.2f\n", order.TotalAmount)

	return b.String()
}
