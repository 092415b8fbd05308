package models

import "time"

// ProcessingStatus classifies the outcome of a single sheet run.
type ProcessingStatus string

const (
	StatusSuccess ProcessingStatus = "SUCCESS"
	StatusWarning ProcessingStatus = "WARNING"
	StatusError   ProcessingStatus = "ERROR"
)

// QualityMetrics holds the objective image-quality scores computed by the
// quality assessor. Every score except SkewAngle is normalized to [0, 1].
type QualityMetrics struct {
	Sharpness       float64  `json:"sharpness"`
	Contrast        float64  `json:"contrast"`
	Brightness      float64  `json:"brightness"`
	NoiseLevel      float64  `json:"noise_level"`
	SkewAngle       float64  `json:"skew_angle_degrees"`
	OverallQuality  float64  `json:"overall_quality"`
	Recommendations []string `json:"recommendations"`
}

// EnhancementResult reports which corrective steps ran and how the quality
// metrics moved. AppliedSteps preserves pipeline order.
type EnhancementResult struct {
	QualityBefore QualityMetrics `json:"quality_before"`
	QualityAfter  QualityMetrics `json:"quality_after"`
	AppliedSteps  []string       `json:"applied_steps"`
	ElapsedTime   time.Duration  `json:"elapsed_time"`
}

// BubbleDetection is the per-question output of the bubble analyzer.
// DetectedOptions is sorted; ConfidenceScores is parallel to it.
type BubbleDetection struct {
	QuestionNumber      int       `json:"question_number"`
	DetectedOptions     []string  `json:"detected_options"`
	ConfidenceScores    []float64 `json:"confidence_scores"`
	IsMultipleSelection bool      `json:"is_multiple_selection"`
	QualityScore        float64   `json:"quality_score"`
}

// QuestionResult records the evaluation outcome for one question.
type QuestionResult struct {
	QuestionNumber int      `json:"question_number"`
	Subject        string   `json:"subject"`
	StudentAnswers []string `json:"student_answers"`
	CorrectAnswers []string `json:"correct_answers"`
	IsCorrect      bool     `json:"is_correct"`
	Status         string   `json:"status"` // "correct", "incorrect", "unanswered"
}

// SubjectScore aggregates correctness for one subject band.
type SubjectScore struct {
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Grade      string  `json:"grade"`
}

// Summary counts question outcomes across the whole sheet.
type Summary struct {
	Correct    int `json:"correct"`
	Incorrect  int `json:"incorrect"`
	Unanswered int `json:"unanswered"`
}

// EvaluationResult is the scored outcome of one sheet against an answer key.
type EvaluationResult struct {
	TotalQuestions  int                     `json:"total_questions"`
	TotalScore      float64                 `json:"total_score"`
	SubjectScores   map[string]SubjectScore `json:"subject_scores"`
	DetailedResults []QuestionResult        `json:"detailed_results"`
	Summary         Summary                 `json:"summary"`
}

// SheetResult is the complete outcome of processing a single OMR sheet.
type SheetResult struct {
	Status            ProcessingStatus      `json:"status"`
	DetectedSet       string                `json:"detected_set"`
	Responses         map[int][]string      `json:"responses"`
	Detections        []BubbleDetection     `json:"detections,omitempty"`
	Evaluation        *EvaluationResult     `json:"evaluation,omitempty"`
	Quality           QualityMetrics        `json:"quality"`
	Enhancement       *EnhancementResult    `json:"enhancement,omitempty"`
	BoundaryFound     bool                  `json:"boundary_found"`
	Warnings          []string              `json:"warnings,omitempty"`
	ErrorMessage      string                `json:"error_message,omitempty"`
	ProcessingTimeSec float64               `json:"processing_time_sec"`
	Timestamp         time.Time             `json:"timestamp"`
}

// BatchStatistics summarizes a batch run.
type BatchStatistics struct {
	TotalSheets         int     `json:"total_sheets"`
	Succeeded           int     `json:"succeeded"`
	Warned              int     `json:"warned"`
	Failed              int     `json:"failed"`
	SuccessRate         float64 `json:"success_rate"`
	TotalTimeSec        float64 `json:"total_time_sec"`
	AverageTimeSec      float64 `json:"average_time_sec"`
	AverageQualityScore float64 `json:"average_quality_score"`
}

// BatchResult pairs per-sheet results with batch statistics.
type BatchResult struct {
	SessionID  string          `json:"session_id"`
	Results    []SheetResult   `json:"results"`
	Statistics BatchStatistics `json:"statistics"`
}
