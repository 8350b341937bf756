package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/config"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/utils"
)

const signature = "\n\nCordialement,\nL'équipe Suivi Budget"

type emailService struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewEmailService sends through SendGrid. With no API key configured, emails
// are only logged.
func NewEmailService(cfg config.EmailConfig) EmailService {
	s := &emailService{from: mail.NewEmail(cfg.FromName, cfg.From)}
	if cfg.SendGridAPIKey != "" {
		request := sendgrid.GetRequest(cfg.SendGridAPIKey, "/v3/mail/send", cfg.SendGridHost)
		request.Method = "POST"
		s.client = &sendgrid.Client{Request: request}
	}
	return s
}

func (s *emailService) deliver(ctx context.Context, email, name, subject, body string) error {
	if s.client == nil {
		logger.Info("Email delivery disabled, logging message", "to", email, "subject", subject)
		return nil
	}

	message := mail.NewSingleEmail(s.from, subject, mail.NewEmail(name, email), body+signature, "")
	logger.ExternalServiceCall("sendgrid", "send", "to", email, "subject", subject)
	resp, err := s.client.SendWithContext(ctx, message)
	if err == nil && resp.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err, "to", email)
	if err != nil {
		return fmt.Errorf("failed to send email via sendgrid: %w", err)
	}
	return nil
}

func (s *emailService) SendObjectiveReached(ctx context.Context, email, name, objective string, target string) error {
	subject := fmt.Sprintf("Objectif atteint : %s", objective)
	body := fmt.Sprintf("Bonjour %s,\n\nVotre objectif %q a atteint son montant cible de %s.", name, objective, target)
	return s.deliver(ctx, email, name, subject, body)
}

func (s *emailService) SendBudgetAlert(ctx context.Context, email, name, category, month string, percent string) error {
	subject := fmt.Sprintf("Alerte budget %s (%s)", category, month)
	body := fmt.Sprintf("Bonjour %s,\n\nVous avez consommé %s%% de votre budget %s pour %s.", name, percent, category, month)
	return s.deliver(ctx, email, name, subject, body)
}

func (s *emailService) SendDebtOverdue(ctx context.Context, email, name, debt, remaining string, dueDate time.Time) error {
	subject := fmt.Sprintf("Dette en retard : %s", debt)
	body := fmt.Sprintf("Bonjour %s,\n\nLa dette %q arrivait à échéance le %s. Il reste %s à rembourser.",
		name, debt, dueDate.Format(utils.DateLayout), remaining)
	return s.deliver(ctx, email, name, subject, body)
}

func (s *emailService) SendShareInvitation(ctx context.Context, email, name, ownerName, account string, role domain.ShareRole) error {
	subject := fmt.Sprintf("%s partage le compte %s avec vous", ownerName, account)
	body := fmt.Sprintf("Bonjour %s,\n\n%s vous a donné accès au compte %q avec le rôle %s.", name, ownerName, account, role)
	return s.deliver(ctx, email, name, subject, body)
}

func (s *emailService) SendSubscriptionFailed(ctx context.Context, email, name, subscription, amount string) error {
	subject := fmt.Sprintf("Échec du prélèvement : %s", subscription)
	body := fmt.Sprintf("Bonjour %s,\n\nLe prélèvement de %s pour l'abonnement %q n'a pas pu être effectué faute de solde suffisant.",
		name, amount, subscription)
	return s.deliver(ctx, email, name, subject, body)
}
