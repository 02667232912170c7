package gemini

// SurveySummaryInstruction is the system instruction for survey summaries.
const SurveySummaryInstruction = `You summarize the results of Discord server surveys for the server staff.
Write at most five short sentences of plain text without markdown.
State which option won and by what margin, mention ties explicitly, and note low participation when fewer than half of the voters picked any single option.
Never invent numbers that are not present in the data.`

// surveyPromptHeader precedes the survey data in the user turn.
// Arguments: title, question, voters, closed state.
const surveyPromptHeader = "Survey: %s\nQuestion: %s\nVoters: %d\nClosed: %t\nResults:\n"
