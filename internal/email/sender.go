package email

import (
	"context"
	"errors"
)

// OrderSummary es el resumen que viaja en el correo de confirmacion.
type OrderSummary struct {
	OrderRef   string
	CourseName string
	Price      float64
	Date       string
}

// Sender define la interfaz para el envio de correos transaccionales.
type Sender interface {
	SendActivationCode(ctx context.Context, toEmail, name, code string) error
	SendOrderConfirmation(ctx context.Context, toEmail string, summary OrderSummary) error
	SendQuestionReply(ctx context.Context, toEmail, name, courseName, sectionTitle string) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) fail() error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}

func (s *disabledSender) SendActivationCode(_ context.Context, _, _, _ string) error {
	return s.fail()
}

func (s *disabledSender) SendOrderConfirmation(_ context.Context, _ string, _ OrderSummary) error {
	return s.fail()
}

func (s *disabledSender) SendQuestionReply(_ context.Context, _, _, _, _ string) error {
	return s.fail()
}
