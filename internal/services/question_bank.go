package services

// The static question bank. Each dimension contributes one core question
// plus optional extras; flow and portfolio questions sit outside the
// dimension templates because they feed metrics directly.

type questionTemplate struct {
	Text      string
	Dimension Dimension
	Type      QuestionType
	Metrics   []MetricType
	Core      bool
	LowLabel  string
	HighLabel string
}

var dimensionTemplates = map[Dimension][]questionTemplate{
	DimensionClarity: {
		{Text: "How clear are the requirements and expectations for your key tasks?", Type: QuestionLikert5, Metrics: []MetricType{MetricFlow, MetricFriction}, Core: true},
		{Text: "How often do you have to seek clarification on what needs to be done?", Type: QuestionLikert5, Metrics: []MetricType{MetricFriction}},
		{Text: "How well do you understand the priorities among your tasks?", Type: QuestionLikert5, Metrics: []MetricType{MetricFlow}},
	},
	DimensionTooling: {
		{Text: "How much do your tools and systems help vs. hinder your work?", Type: QuestionLikert5, Metrics: []MetricType{MetricFriction}, Core: true},
		{Text: "How often do technical issues or tool problems slow down your work?", Type: QuestionLikert5, Metrics: []MetricType{MetricFriction}},
		{Text: "How easy is it to find the information you need in your systems?", Type: QuestionLikert5, Metrics: []MetricType{MetricFlow, MetricFriction}},
	},
	DimensionProcess: {
		{Text: "How often do unclear processes slow down your work?", Type: QuestionLikert5, Metrics: []MetricType{MetricFriction}, Core: true},
		{Text: "How streamlined are the workflows for your regular tasks?", Type: QuestionLikert5, Metrics: []MetricType{MetricFlow}},
		{Text: "How much time do you spend navigating bureaucracy or approvals?", Type: QuestionLikert5, Metrics: []MetricType{MetricFriction}},
	},
	DimensionRework: {
		{Text: "How often do you have to redo work due to changing requirements?", Type: QuestionLikert5, Metrics: []MetricType{MetricFriction, MetricSafety}, Core: true},
		{Text: "How often does your work require significant revisions after review?", Type: QuestionLikert5, Metrics: []MetricType{MetricSafety}},
		{Text: "How often do quality issues require rework before delivery?", Type: QuestionLikert5, Metrics: []MetricType{MetricSafety}},
	},
	DimensionDelay: {
		{Text: "How much of your time is spent waiting on others to proceed?", Type: QuestionLikert5, Metrics: []MetricType{MetricFriction, MetricFlow}, Core: true},
		{Text: "How often do dependencies on other teams delay your work?", Type: QuestionLikert5, Metrics: []MetricType{MetricFriction}},
		{Text: "How quickly can you get decisions when you need them?", Type: QuestionLikert5, Metrics: []MetricType{MetricFlow}},
	},
	DimensionSafety: {
		{Text: "When issues or blockers arise, how quickly are they typically raised with the team?", Type: QuestionLikert5, Metrics: []MetricType{MetricSafety, MetricFriction}, Core: true, LowLabel: "Often delayed or not raised", HighLabel: "Raised immediately"},
		{Text: "When someone makes a mistake, how constructively is it typically addressed?", Type: QuestionLikert5, Metrics: []MetricType{MetricSafety}, LowLabel: "Blame-focused", HighLabel: "Learning-focused"},
		{Text: "How often do you see problems or inefficiencies that aren't being discussed openly?", Type: QuestionLikert5, Metrics: []MetricType{MetricSafety, MetricFriction}, LowLabel: "Very often", HighLabel: "Rarely or never"},
	},
}

var flowTemplates = []questionTemplate{
	{Text: "In a typical week, how much of your planned work do you complete?", Dimension: DimensionClarity, Type: QuestionLikert5, Metrics: []MetricType{MetricFlow}, Core: true},
	{Text: "How often are you able to work without significant blockers?", Dimension: DimensionDelay, Type: QuestionLikert5, Metrics: []MetricType{MetricFlow}, Core: true},
	{Text: "How consistently are you able to deliver value in your role?", Dimension: DimensionClarity, Type: QuestionLikert5, Metrics: []MetricType{MetricFlow}},
}

var portfolioTemplates = []questionTemplate{
	{Text: "What percentage of your time is spent on operational/maintenance work?", Dimension: DimensionProcess, Type: QuestionSlider, Metrics: []MetricType{MetricPortfolio}, Core: true},
	{Text: "What percentage of your time is spent on new initiatives or improvements?", Dimension: DimensionProcess, Type: QuestionSlider, Metrics: []MetricType{MetricPortfolio}, Core: true},
	{Text: "Do you have enough time for strategic vs. tactical work?", Dimension: DimensionProcess, Type: QuestionLikert5, Metrics: []MetricType{MetricPortfolio, MetricFlow}},
}

// taskSpecificTemplates adds occupation-flavored probes when a survey is
// generated with the task-specific option.
var taskSpecificTemplates = []questionTemplate{
	{Text: "For your most time-consuming task, how smooth is the handoff to the next step?", Dimension: DimensionProcess, Type: QuestionLikert5, Metrics: []MetricType{MetricFlow, MetricFriction}},
	{Text: "For your most time-consuming task, how often do you wait on inputs from others?", Dimension: DimensionDelay, Type: QuestionLikert5, Metrics: []MetricType{MetricFriction}},
}

// defaultMaxQuestions keeps the survey under the target completion time.
const defaultMaxQuestions = 18

// buildQuestionSet assembles the ordered template list: every dimension's
// core question first, then flow/portfolio cores, then extras until the cap.
func buildQuestionSet(useTaskSpecific bool, maxQuestions int) []questionTemplate {
	if maxQuestions <= 0 {
		maxQuestions = defaultMaxQuestions
	}
	var core, extra []questionTemplate
	for _, d := range AllDimensions() {
		for _, tpl := range dimensionTemplates[d] {
			tpl.Dimension = d
			if tpl.Core {
				core = append(core, tpl)
			} else {
				extra = append(extra, tpl)
			}
		}
	}
	for _, tpl := range flowTemplates {
		if tpl.Core {
			core = append(core, tpl)
		} else {
			extra = append(extra, tpl)
		}
	}
	for _, tpl := range portfolioTemplates {
		if tpl.Core {
			core = append(core, tpl)
		} else {
			extra = append(extra, tpl)
		}
	}
	if useTaskSpecific {
		extra = append(taskSpecificTemplates[:len(taskSpecificTemplates):len(taskSpecificTemplates)], extra...)
	}
	out := core
	for _, tpl := range extra {
		if len(out) >= maxQuestions {
			break
		}
		out = append(out, tpl)
	}
	if len(out) > maxQuestions {
		out = out[:maxQuestions]
	}
	return out
}

// EstimateCompletionMinutes estimates survey completion time, assuming ~20
// seconds per question plus a 20% reading buffer, rounded up to the next
// minute.
func EstimateCompletionMinutes(questionCount int) int {
	const avgSecondsPerQuestion = 20
	const bufferMultiplier = 1.2
	totalSeconds := float64(questionCount) * avgSecondsPerQuestion * bufferMultiplier
	return int(totalSeconds/60) + 1
}
