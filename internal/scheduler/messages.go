package scheduler

import (
	"fmt"
	"time"
)

const dateLayout = "02/01/2006"

const (
	msgConfirmedAck = "Obrigado! Seu agendamento está confirmado. Até já!"
	msgCancelledAck = "Tudo bem, seu agendamento foi cancelado. Quando quiser, é só dizer 'agendar' para marcar um novo horário."

	msgAppointmentPassed = "O agendamento já passou. Se precisar remarcar, entre em contato."
)

func confirmationRequest(name string, date time.Time, slot, professional string) string {
	return fmt.Sprintf(
		"Olá, %s! Você tem um horário agendado para %s às %s com %s. Responda 'Confirmo' para confirmar ou 'Não confirmo' para cancelar.",
		name, date.Format(dateLayout), slot, professional,
	)
}

func reminderBody(name, slot, professional string) string {
	return fmt.Sprintf(
		"Lembrete: %s, seu horário é às %s com %s. Até já!",
		name, slot, professional,
	)
}
