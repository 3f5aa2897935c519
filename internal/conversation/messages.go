package conversation

import (
	"fmt"
	"strings"
	"time"
)

// Dialogue texts. The bot speaks Portuguese; keywords below are what
// customers actually type.
const (
	keywordBooking = "agendar"

	msgAskDate         = "Informe a data desejada no formato DD/MM/AAAA. Exemplo: 20/05/2025"
	msgInvalidDate     = "Data inválida. Use o formato DD/MM/AAAA. Exemplo: 20/05/2025"
	msgPastDate        = "Essa data já passou. Informe uma data futura no formato DD/MM/AAAA."
	msgNoAvailability  = "Não há horários disponíveis nessa data. Por favor, escolha outra data (DD/MM/AAAA)."
	msgAskName         = "Para finalizar, informe seu nome."
	msgTryAgain        = "Ocorreu um erro ao agendar. Tente novamente."
	msgFarewell        = "Agradecemos pelo seu contato! Se precisar de mais alguma coisa, estamos à disposição. Até logo!"
	msgInvalidServices = "Por favor, escolha serviços válidos separados por vírgula. Exemplo: 1, 2"
)

var farewellKeywords = []string{"obrigado", "obrigada", "tchau"}

func containsFarewell(normalized string) bool {
	for _, kw := range farewellKeywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

func rosterPrompt(menu string) string {
	return "Escolha o profissional (digite o número correspondente):\n" + menu
}

func invalidProfessionalPrompt(menu string) string {
	return "Escolha um profissional válido:\n" + menu
}

func servicesPrompt(menu string) string {
	return "Agora, escolha os serviços desejados (digite os números separados por vírgula):\n" + menu
}

func slotsPrompt(slots []string) string {
	return fmt.Sprintf(
		"Horários disponíveis:\n%s\n\nResponda com o horário desejado. Exemplo: %s",
		strings.Join(slots, ", "), slots[0],
	)
}

func invalidSlotPrompt(slots []string) string {
	return "Horário inválido. Escolha um dos horários disponíveis:\n" + strings.Join(slots, ", ")
}

func slotJustTakenPrompt(slots []string) string {
	return "Esse horário acabou de ser reservado. Estes ainda estão livres:\n" + strings.Join(slots, ", ")
}

func bookingConfirmed(name, professional string, date time.Time, slot string, services []string) string {
	return fmt.Sprintf(
		"Agendamento confirmado para %s em %s às %s com os serviços: %s e profissional: %s.",
		name, date.Format("02/01/2006"), slot, strings.Join(services, ", "), professional,
	)
}
