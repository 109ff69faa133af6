package handler

import (
	"fmt"
	"strconv"
	"strings"

	"studio-schedule-bot/internal/service"
)

var weekdayNames = [7]string{"domingo", "segunda", "terça", "quarta", "quinta", "sexta", "sábado"}

func weekdayName(weekday int) string {
	if weekday < 0 || weekday > 6 {
		return "?"
	}
	return weekdayNames[weekday]
}

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%q não é um ID válido", arg)
	}
	return uint(id), nil
}

// parseMarks reads the per-student attendance tokens of /presenca and
// /corrigir. Each token is <studentID>:<marca> where marca is P (presente),
// F (falta), F! (falta avisada) or - (sem marca).
func parseMarks(args []string) ([]service.RosterMark, error) {
	marks := make([]service.RosterMark, 0, len(args))
	for _, arg := range args {
		parts := strings.SplitN(arg, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("marca inválida %q, use <aluno>:<P|F|F!|->", arg)
		}

		studentID, err := parseID(parts[0])
		if err != nil {
			return nil, err
		}

		mark := service.RosterMark{StudentID: studentID}
		switch strings.ToUpper(parts[1]) {
		case "P":
			present := true
			mark.Present = &present
		case "F":
			present := false
			mark.Present = &present
		case "F!":
			present := false
			mark.Present = &present
			mark.NotifiedAbsence = true
		case "-":
			// left unmarked
		default:
			return nil, fmt.Errorf("marca inválida %q, use P, F, F! ou -", parts[1])
		}
		marks = append(marks, mark)
	}
	return marks, nil
}

func presenceLabel(present *bool, notified bool) string {
	switch {
	case present == nil:
		return "—"
	case *present:
		return "✅ presente"
	case notified:
		return "🔔 falta avisada"
	default:
		return "❌ falta"
	}
}
