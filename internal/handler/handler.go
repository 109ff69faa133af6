package handler

import (
	"errors"
	"fmt"
	"strings"

	"studio-schedule-bot/internal/config"
	"studio-schedule-bot/internal/service"
	"studio-schedule-bot/pkg/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	client                *telegram.Client
	attendanceService     *service.AttendanceService
	reconciliationService *service.ReconciliationService
	absenceService        *service.AbsenceService
	creditService         *service.CreditService
	rescheduleService     *service.RescheduleService
	enrollmentService     *service.EnrollmentService
	scheduleService       *service.ScheduleService
	holidayService        *service.HolidayService
	config                *config.StudioConfig
}

func NewHandler(
	client *telegram.Client,
	attendanceService *service.AttendanceService,
	reconciliationService *service.ReconciliationService,
	absenceService *service.AbsenceService,
	creditService *service.CreditService,
	rescheduleService *service.RescheduleService,
	enrollmentService *service.EnrollmentService,
	scheduleService *service.ScheduleService,
	holidayService *service.HolidayService,
	cfg *config.StudioConfig,
) *Handler {
	return &Handler{
		client:                client,
		attendanceService:     attendanceService,
		reconciliationService: reconciliationService,
		absenceService:        absenceService,
		creditService:         creditService,
		rescheduleService:     rescheduleService,
		enrollmentService:     enrollmentService,
		scheduleService:       scheduleService,
		holidayService:        holidayService,
		config:                cfg,
	}
}

func (h *Handler) HandleUpdates(updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		if update.CallbackQuery != nil {
			h.handleCallbackQuery(update.CallbackQuery)
			continue
		}

		if update.Message == nil {
			continue
		}

		h.handleMessage(update.Message)
	}
}

func (h *Handler) handleMessage(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}

	if !h.isStaff(chatID) {
		h.send(chatID, "⛔ Acesso restrito à equipe do estúdio.")
		return
	}

	command := strings.Fields(text)[0]
	args := strings.Fields(text)[1:]

	logrus.WithFields(logrus.Fields{
		"chat_id": chatID,
		"command": command,
	}).Debug("Handling command")

	switch command {
	case "/start", "/help", "/ajuda":
		h.sendHelp(chatID)
	case "/pendentes":
		h.listPending(chatID, args)
	case "/presenca":
		h.submitAttendance(chatID, args)
	case "/corrigir":
		h.amendAttendance(chatID, args)
	case "/status":
		h.attendanceStatus(chatID, args)
	case "/aviso":
		h.notifyAbsence(chatID, args)
	case "/faltas":
		h.listAbsences(chatID, args)
	case "/conceder":
		h.grantCredit(chatID, args)
	case "/creditos":
		h.listCredits(chatID, args)
	case "/cancelar_uso":
		h.cancelUsage(chatID, args)
	case "/revogar":
		h.revokeCredit(chatID, args)
	case "/reagendar":
		h.createReschedule(chatID, args)
	case "/reagendamentos":
		h.listReschedules(chatID)
	case "/alterar":
		h.createChange(chatID, args)
	case "/alteracoes":
		h.listChanges(chatID)
	case "/limpar_historico":
		h.clearHistory(chatID)
	case "/horario":
		h.createSlot(chatID, args)
	case "/horarios":
		h.listSlots(chatID, args)
	case "/horario_editar":
		h.editSlot(chatID, args)
	case "/desativar_horario":
		h.deactivateSlot(chatID, args)
	case "/modalidade":
		h.createModality(chatID, args)
	case "/professor":
		h.createTeacher(chatID, args)
	case "/matricular":
		h.enroll(chatID, args)
	case "/substituto":
		h.enrollSubstitute(chatID, args)
	case "/pausar":
		h.pauseEnrollment(chatID, args)
	case "/retomar":
		h.resumeEnrollment(chatID, args)
	case "/feriado":
		h.addHoliday(chatID, args)
	case "/feriados":
		h.listHolidays(chatID)
	case "/feriado_remover":
		h.removeHoliday(chatID, args)
	default:
		h.send(chatID, "⚠️ Comando desconhecido. Use /ajuda para ver os comandos.")
	}
}

func (h *Handler) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	data := callback.Data

	// Drop the inline keyboard once a button is pressed.
	editMsg := tgbotapi.NewEditMessageReplyMarkup(chatID, callback.Message.MessageID, tgbotapi.NewInlineKeyboardMarkup())
	h.client.Bot.Send(editMsg)

	if !h.isStaff(chatID) {
		return
	}

	switch {
	case strings.HasPrefix(data, "resched_"):
		h.handleRescheduleCallback(chatID, data)
	case strings.HasPrefix(data, "change_"):
		h.handleChangeCallback(chatID, data)
	case strings.HasPrefix(data, "resume_"):
		h.handleResumeCallback(chatID, data)
	case data == "cancel":
		h.send(chatID, "Operação cancelada.")
	}
}

func (h *Handler) sendHelp(chatID int64) {
	h.send(chatID, `📋 Comandos do estúdio:

Aulas
/pendentes — aulas sem chamada no período
/presenca <horário> <data> <aluno:marca ...> — registrar chamada (P presente, F falta, F! falta avisada, - sem marca)
/corrigir <registro> <aluno:marca ...> — corrigir chamada
/status <horário> <data> — situação da aula

Faltas e reposições
/aviso <aluno> <horário> <data> — registrar aviso de falta
/faltas <aluno> — faltas avisadas e direito a reposição
/conceder <aluno> <qtd> <validade> [modalidade] — conceder créditos
/creditos <aluno> — créditos disponíveis
/cancelar_uso <uso> — estornar crédito e cancelar reposição
/revogar <crédito> — revogar crédito concedido

Reagendamentos
/reagendar <aluno> <matrícula> <horário orig.> <data orig.> <horário novo> <data nova> [crédito]
/reagendamentos — pedidos pendentes
/alterar <aluno> <matrícula> <horário novo> — mudança definitiva
/alteracoes — mudanças pendentes
/limpar_historico — apagar pedidos já decididos

Grade
/horario <dia 0-6> <início> <fim> <modalidade> [professor] — criar horário
/horarios [todos] — grade ativa (ou completa)
/horario_editar <horário> <início> <fim>
/desativar_horario <horário>
/modalidade <nome>
/professor <nome> [chat]

Matrículas
/matricular <aluno> <horário>
/substituto <matrícula pausada> <aluno>
/pausar <matrícula> <frozen|absent|waitlisted>
/retomar <matrícula>

Calendário
/feriado <data> <nome> — fechar o estúdio na data
/feriado_remover <data> — reabrir a data
/feriados — datas fechadas`)
}

// isStaff gates every command: the configured staff chat or a registered
// teacher chat.
func (h *Handler) isStaff(chatID int64) bool {
	if chatID == h.config.BaseAdminChatID {
		return true
	}
	teacher, err := h.scheduleService.TeacherByChatID(chatID)
	if err != nil {
		logrus.WithError(err).Error("Failed to resolve teacher chat")
		return false
	}
	return teacher != nil
}

func (h *Handler) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.client.Bot.Send(msg); err != nil {
		logrus.WithError(err).Error("Failed to send message")
	}
}

// replyError maps the service error taxonomy to user-facing messages.
func (h *Handler) replyError(chatID int64, err error) {
	var validation *service.ValidationError
	var conflict *service.StateConflictError
	var txErr *service.TransactionError

	switch {
	case errors.Is(err, service.ErrNotFound):
		h.send(chatID, "❌ Registro não encontrado.")
	case errors.Is(err, service.ErrCreditExhausted):
		h.send(chatID, "❌ Crédito esgotado: nenhuma unidade disponível.")
	case errors.Is(err, service.ErrCreditExpired):
		h.send(chatID, "❌ Crédito vencido.")
	case errors.Is(err, service.ErrScopeMismatch):
		h.send(chatID, "❌ Crédito restrito a outra modalidade.")
	case errors.As(err, &validation):
		h.send(chatID, fmt.Sprintf("⚠️ Dados inválidos: %s", validation.Msg))
	case errors.As(err, &conflict):
		h.send(chatID, fmt.Sprintf("⚠️ %s", conflict.Msg))
	case errors.As(err, &txErr):
		h.send(chatID, "❌ Operação desfeita por erro interno, tente novamente.")
	default:
		h.send(chatID, "❌ Erro interno.")
		logrus.WithError(err).Error("Unhandled service error")
	}
}
