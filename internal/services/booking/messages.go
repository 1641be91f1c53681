package booking

import (
	"fmt"

	"slotBooker/internal/models"
)

const slotLayout = "Monday, 02 January 2006 at 15:04 MST"

func verificationMessage(b *models.Booking, link string) (string, string) {
	return "Verify your booking",
		fmt.Sprintf("Hi %s,\n\nPlease click the following link to verify your booking for %s:\n%s\n\nThe link is valid until %s.",
			b.Name, b.ScheduledDate.Format(slotLayout), link, b.ExpiresAt.Format(slotLayout))
}

func renewalMessage(b *models.Booking, link string) (string, string) {
	return "New verification link",
		fmt.Sprintf("Hi %s,\n\nYour previous verification link has expired. Please use this new link to verify your booking for %s:\n%s\n\nThe link is valid until %s.",
			b.Name, b.ScheduledDate.Format(slotLayout), link, b.ExpiresAt.Format(slotLayout))
}

func confirmedMessage(b *models.Booking) (string, string) {
	return "Booking confirmed",
		fmt.Sprintf("Hi %s,\n\nYour booking has been successfully verified for %s. We will let you know once it is reviewed.",
			b.Name, b.ScheduledDate.Format(slotLayout))
}

func decisionMessage(b *models.Booking) (string, string) {
	if b.Status == models.StatusRejected {
		return rejectedMessage(b)
	}

	return acceptedMessage(b)
}

func acceptedMessage(b *models.Booking) (string, string) {
	return "Booking approved",
		fmt.Sprintf("Hi %s,\n\nGood news: your booking for %s has been approved.",
			b.Name, b.ScheduledDate.Format(slotLayout))
}

func rejectedMessage(b *models.Booking) (string, string) {
	return "Booking rejected",
		fmt.Sprintf("Hi %s,\n\nUnfortunately your booking for %s has been rejected.",
			b.Name, b.ScheduledDate.Format(slotLayout))
}
