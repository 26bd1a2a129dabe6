package llm

// Base prompts for each agent operation.
const (
	SystemPrompt = `You are a local coding agent. Work only in the specified workspace. Provide changes as unified diff. Keep responses short and safe.`

	FileGenerationPrompt = `Convert the description to an executable file. Keep structure simple and minimal. Output only the file content, without surrounding commentary.`

	FileEditPrompt = `Only change necessary parts. Output must be unified diff with --- and +++ file headers and @@ hunk headers.`

	PatchGenerationPrompt = `Generate a unified diff patch based on the description. Use paths relative to the project root, one file per header pair. Ensure the patch is valid and can be applied safely.`

	AnalysisPrompt = `Analyze the project structure and provide a comprehensive code map including:
- File sizes and types
- Programming languages used
- Key symbols (types, functions, docs)
- Project structure overview
- Key components identification`

	PlanningPrompt = `Create a detailed plan for the given goal. Break it down into actionable steps that can be added to a TODO list.`

	AskPrompt = `Answer the question based on the current project context and your knowledge. Provide helpful, actionable advice.`
)
