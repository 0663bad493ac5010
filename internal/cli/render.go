package cli

import (
	"fmt"
	"strings"

	"simple-todo/internal/models"
)

func renderTask(t models.Task) string {
	box, title := "[ ]", PendingStyle.Render(t.Title)
	if t.Completed {
		box, title = "[x]", DoneStyle.Render(t.Title)
	}
	return fmt.Sprintf("%s %s %s", box, title, IDStyle.Render(t.ID))
}

func renderTasks(tasks []models.Task) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Todos"))
	b.WriteString("\n")

	if len(tasks) == 0 {
		b.WriteString(IDStyle.Render("nothing to do"))
		b.WriteString("\n")
		return b.String()
	}

	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
		b.WriteString(renderTask(t))
		b.WriteString("\n")
		if t.Description != "" {
			b.WriteString(DescriptionStyle.Render(t.Description))
			b.WriteString("\n")
		}
	}
	b.WriteString(IDStyle.Render(fmt.Sprintf("%d of %d done", done, len(tasks))))
	b.WriteString("\n")
	return b.String()
}
