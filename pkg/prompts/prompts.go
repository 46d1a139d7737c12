package prompts

// Template placeholders. Each role substitutes its input into exactly one of these.
const (
	ObjectiveVar    = "objective"
	InteractionVar  = "interaction"
	ActionVar       = "action"
	FailedActionVar = "failed_action"
)

const DefaultTemperature = 0.7

var (
	PlannerSystem = "You are a Planning Agent that breaks down high-level objectives into specific steps."
	PlannerPrompt = "Break down the following objective into specific steps: {objective}"

	NavigatorSystem = "You are a Navigation Agent that understands web page structure and identifies optimal paths."
	NavigatorPrompt = "Analyze the following page and identify the best elements to interact with to achieve: {objective}"

	InteractorSystem = "You are an Interaction Agent that executes precise UI interactions."
	InteractorPrompt = "Execute the following interaction: {interaction}"

	VerifierSystem = "You are a Verification Agent that confirms actions had the expected outcomes."
	VerifierPrompt = "Verify if the following action produced the expected outcome: {action}"

	RecoverySystem = "You are a Recovery Agent that implements recovery strategies when actions fail."
	RecoveryPrompt = "Implement a recovery strategy for the following failed action: {failed_action}"
)

// Tuned per-role temperatures used by the settings layer. Planning and
// interaction stay close to deterministic, recovery gets room to improvise.
var (
	PlannerTemperature    = 0.2
	NavigatorTemperature  = 0.3
	InteractorTemperature = 0.1
	VerifierTemperature   = 0.2
	RecoveryTemperature   = 0.4
)
