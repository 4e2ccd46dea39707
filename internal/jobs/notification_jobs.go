package jobs

import (
	"context"
	"fmt"
	"strings"

	"vehicle-rental-desk/internal/domain"
	"vehicle-rental-desk/internal/logger"
)

// DeliveryStats counts what one reminder run sent.
type DeliveryStats struct {
	Holders int
	Emails  int
	SMS     int
	Failed  int
}

// SendOverdueReminders notifies holders whose rental window has already ended.
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		jr.remind(context.Background(), "SendOverdueReminders", "Reminder: overdue vehicle return", jr.notifier.Overdue)
	})
}

// SendDueSoonReminders notifies holders whose rental ends within the lookahead.
func (jr *JobRunner) SendDueSoonReminders() {
	jr.runWithRecovery("SendDueSoonReminders", func() {
		jr.remind(context.Background(), "SendDueSoonReminders", "Reminder: vehicle due back soon", jr.notifier.DueSoon)
	})
}

// SendStartingSoonReminders notifies holders of pending holds that start within the lookahead.
// Rentals made through the engine are confirmed immediately, so only unconfirmed holds
// loaded from storage can trigger it. Confirmed rentals are covered per holder by
// Notifier.For.
func (jr *JobRunner) SendStartingSoonReminders() {
	jr.runWithRecovery("SendStartingSoonReminders", func() {
		jr.remind(context.Background(), "SendStartingSoonReminders", "Reminder: your rental starts soon", jr.notifier.StartingSoon)
	})
}

func (jr *JobRunner) remind(ctx context.Context, job, subject string, derive func() []domain.Alert) DeliveryStats {
	log := logger.WithJob(job)
	if err := jr.fleet.Load(ctx); err != nil {
		log.Error("Failed to load fleet", "error", err)
		return DeliveryStats{}
	}
	stats := jr.Deliver(ctx, subject, derive())
	log.Info("Reminders delivered", "holders", stats.Holders, "emails", stats.Emails, "sms", stats.SMS, "failed", stats.Failed)
	return stats
}

// Deliver groups alerts by holder and sends one e-mail and one SMS per holder over
// whichever channels the account's contact details allow.
func (jr *JobRunner) Deliver(ctx context.Context, subject string, alerts []domain.Alert) DeliveryStats {
	var stats DeliveryStats
	byHolder := make(map[string][]string)
	var order []string
	for _, a := range alerts {
		if a.Holder == "" {
			continue
		}
		if _, seen := byHolder[a.Holder]; !seen {
			order = append(order, a.Holder)
		}
		byHolder[a.Holder] = append(byHolder[a.Holder], a.Message)
	}

	for _, holder := range order {
		stats.Holders++
		acc, err := jr.services.Accounts.Get(ctx, holder)
		if err != nil {
			logger.Warn("Skipping reminders for unknown holder", "holder", holder, "error", err)
			stats.Failed++
			continue
		}
		messages := byHolder[holder]

		if jr.services.Email != nil && acc.HasEmail() {
			body := fmt.Sprintf("Dear %s,\n\n%s\n\nThank you,\nVehicle Rental Desk", acc.Name, strings.Join(messages, "\n"))
			if err := jr.services.Email.Send(ctx, acc.Email, acc.Name, subject, body); err != nil {
				logger.Error("Failed to send reminder email", "holder", holder, "error", err)
				stats.Failed++
			} else {
				stats.Emails++
			}
		}

		if jr.services.SMS != nil && acc.HasPhone() {
			if err := jr.services.SMS.Send(ctx, acc.Phone, strings.Join(messages, "; ")); err != nil {
				logger.Error("Failed to send reminder SMS", "holder", holder, "error", err)
				stats.Failed++
			} else {
				stats.SMS++
			}
		}
	}
	return stats
}
