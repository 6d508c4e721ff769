package ai

import "strings"

// The prompts are German because the surveys and the research team are: the
// model answers in the language of the question.

// systemPrompt frames every conversation with the research context.
const systemPrompt = "Wir haben verschiedene Umfragen unter den Studierenden gemacht, " +
	"weil wir die Studierenden partizipativ in Entscheidungen und die " +
	"Mitgestaltung ihrer Vorlesungen einbeziehen wollen. Wir wollen also " +
	"nicht nur Lernaktivitäten fördern, sondern darüber hinaus den Studierenden " +
	"gezielte Einflussname ermöglichen. Bitte hilf uns bei der Beantwortung " +
	"folgender Fragen zur Auswertung der Ergebnisse. Bitte beachte, dass es sich " +
	"hierbei um Äußerungen zu mehreren Veranstaltungen von unterschiedlichen Lehrpersonen " +
	"mit unterschiedlichen Inhalten und unterschiedlichen Arten und Tiefe der " +
	"Einflussnahme handelt."

const paperContext = "Stelle dir vor, du schreibst ein wissenschaftliches Paper, in dem über die " +
	"Forschung zu studentischer Partizipation berichtet wird. Studentische Partizipation " +
	"heißt hier, dass die Studierenden Einfluss auf die Vorlesung nehmen dürfen, indem " +
	"sie bei relevanten Fragestellungen in die Entscheidung oder Umsetzung eingebunden " +
	"werden.\n\n"

// Conversation wraps a user prompt with the research-context system message.
func Conversation(text string) []Message {
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: text},
	}
}

func answersBlock(label string, answers []string) string {
	var b strings.Builder
	b.WriteString("Auf die Frage '" + label + "' haben die Studierenden folgendes geantwortet.\n\n")
	b.WriteString(" - " + strings.Join(answers, "\n - "))
	b.WriteString("\n\n")
	return b.String()
}

// SummaryPrompt asks for a plain summary of the answers to one question.
func SummaryPrompt(label string, answers []string) string {
	return answersBlock(label, answers) + "Bitte fasse die Antworten zusammen."
}

// TopicsPrompt asks for a topic-extraction table without interpretation.
func TopicsPrompt(label string, answers []string) string {
	return paperContext + answersBlock(label, answers) +
		"Bitte extrahiere die Themen, die in den Antworten vorkommen, aber interpretiere " +
		"die Antworten nicht! Stattdessen erstelle eine Tabelle, die jedes Thema mit einem " +
		"kurzen Stichwort nennt, die Anzahl der Erwähnungen und ein repräsentatives " +
		"Beispiel nennt. Beachte aber, dass die Umfrage in unterschiedlichen Vorlesungen " +
		"durchgeführt wurde, die Kategorien aber möglichst allgemeingültig sein sollten. " +
		"Fasse daher Kategorien zu einem allgemeinen Oberbegriff zusammen, wenn sie sonst " +
		"spezifisch für eine Vorlesung wären.\n\n" +
		"Erstelle unterhalb der Tabelle zu Kontrollzwecken eine Auflistung aller Themen " +
		"und der Aussagen dazu. Du darfst die Aussagen Abkürzen aber nicht umformulieren!"
}

// InterpretationPrompt asks for a findings draft interpreting the answers.
func InterpretationPrompt(label string, answers []string) string {
	return paperContext + answersBlock(label, answers) +
		"Bitte fasse die Antworten zusammen und interpretiere sie als Textvorschlag " +
		"für die Findings in diesem Paper. Welche Erkenntnisse lassen sich aus den " +
		"Antworten ziehen?"
}
