package model

type InputType string

const (
	InputTypePRD      InputType = "PRD"
	InputTypeFeature  InputType = "FEATURE"
	InputTypeBugfix   InputType = "BUGFIX"
	InputTypeRefactor InputType = "REFACTOR"
	InputTypeHotfix   InputType = "HOTFIX"
	InputTypeOther    InputType = "OTHER"
)

var validInputTypes = map[InputType]bool{
	InputTypePRD:      true,
	InputTypeFeature:  true,
	InputTypeBugfix:   true,
	InputTypeRefactor: true,
	InputTypeHotfix:   true,
	InputTypeOther:    true,
}

type PipelineStep string

const (
	StepIngest      PipelineStep = "ingest"
	StepBuild       PipelineStep = "build"
	StepAudit       PipelineStep = "audit"
	StepDebug       PipelineStep = "debug"
	StepShip        PipelineStep = "ship"
	StepCodeReview  PipelineStep = "code_review"
	StepValidation  PipelineStep = "validation"
	StepCursorAudit PipelineStep = "cursor_audit"
)

var validPipelineSteps = map[PipelineStep]bool{
	StepIngest:      true,
	StepBuild:       true,
	StepAudit:       true,
	StepDebug:       true,
	StepShip:        true,
	StepCodeReview:  true,
	StepValidation:  true,
	StepCursorAudit: true,
}

type FailCategory string

const (
	FailCategoryNone          FailCategory = ""
	FailCategoryBuild         FailCategory = "build"
	FailCategoryEnvironment   FailCategory = "environment"
	FailCategoryCodeQuality   FailCategory = "code_quality"
	FailCategoryHumanDecision FailCategory = "human_decision"
	FailCategorySecurity      FailCategory = "security"
	FailCategoryGit           FailCategory = "git"
	FailCategoryFeasibility   FailCategory = "feasibility"
	FailCategoryRuntime       FailCategory = "runtime"
)

var validFailCategories = map[FailCategory]bool{
	FailCategoryNone:          true,
	FailCategoryBuild:         true,
	FailCategoryEnvironment:   true,
	FailCategoryCodeQuality:   true,
	FailCategoryHumanDecision: true,
	FailCategorySecurity:      true,
	FailCategoryGit:           true,
	FailCategoryFeasibility:   true,
	FailCategoryRuntime:       true,
}

func IsValidInputType(v string) bool    { return validInputTypes[InputType(v)] }
func IsValidPipelineStep(v string) bool { return validPipelineSteps[PipelineStep(v)] }
func IsValidFailCategory(v string) bool { return validFailCategories[FailCategory(v)] }
