package analysis

import (
	"fmt"
	"time"

	"github.com/yanqian/foodeat/internal/domain/selection"
)

// Config controls submissions and per-viewer state retention.
type Config struct {
	Timeout       time.Duration
	Location      *time.Location
	FallbackError string
	IdleTTL       time.Duration
}

// Vitamin groups the vitamin amounts returned by the diet backend.
type Vitamin struct {
	C float64 `json:"C"`
	A float64 `json:"A"`
	B float64 `json:"B"`
}

// Result is the nutrition payload of a successful analysis.
type Result struct {
	TotalKcal   float64 `json:"total_kcal"`
	Carbs       float64 `json:"carbs"`
	Protein     float64 `json:"protein"`
	Fat         float64 `json:"fat"`
	Vitamin     Vitamin `json:"vitamin"`
	Kalium      float64 `json:"kalium"`
	Natrium     float64 `json:"natrium"`
	Cholesterol float64 `json:"cholesterol"`
}

// Breakdown is the calorie contribution per macronutrient.
type Breakdown struct {
	CarbsKcal   float64 `json:"carbsKcal"`
	ProteinKcal float64 `json:"proteinKcal"`
	FatKcal     float64 `json:"fatKcal"`
	EtcKcal     float64 `json:"etcKcal"`
}

// Breakdown applies 4 kcal/g for carbs and protein, 9 kcal/g for fat, and assigns the rest
// of the total to EtcKcal. Values are not rounded.
func (r Result) Breakdown() Breakdown {
	carbs := r.Carbs * 4
	protein := r.Protein * 4
	fat := r.Fat * 9
	return Breakdown{
		CarbsKcal:   carbs,
		ProteinKcal: protein,
		FatKcal:     fat,
		EtcKcal:     r.TotalKcal - carbs - protein - fat,
	}
}

// Envelope is the multipart payload posted to the diet backend.
type Envelope struct {
	Image    []byte
	Filename string
	Type     string
	Date     string
}

// Response is the diet backend's JSON body.
type Response struct {
	Status int     `json:"status"`
	Msg    string  `json:"msg"`
	Data   *Result `json:"data"`
}

// UpstreamError reports a non-2xx answer or a transport failure from the diet backend.
// StatusCode is zero for transport failures.
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("diet api status %d: %s", e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("diet api status %d", e.StatusCode)
	case e.Err != nil:
		return "diet api request failed: " + e.Err.Error()
	default:
		return "diet api request failed"
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Trigger is the input triple that starts a submission.
type Trigger struct {
	PhotoRef    string
	Type        string
	AccessToken string
}

// Complete reports whether every component of the trigger is present.
func (t Trigger) Complete() bool {
	return t.PhotoRef != "" && t.Type != "" && t.AccessToken != ""
}

// Phase is the lifecycle stage of a viewer's analysis.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseLoading      Phase = "loading"
	PhaseSucceeded    Phase = "succeeded"
	PhaseFailed       Phase = "failed"
	PhaseUnauthorized Phase = "unauthorized"
)

// State is the loading/error/data triple owned by a flow.
type State struct {
	Phase      Phase     `json:"phase"`
	Loading    bool      `json:"loading"`
	Message    string    `json:"message,omitempty"`
	Result     *Result   `json:"result,omitempty"`
	Generation uint64    `json:"generation"`
	StartedAt  time.Time `json:"startedAt,omitempty"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

// Viewer identifies who is looking at the screen and the token sent upstream.
type Viewer struct {
	ID          string
	AccessToken string
}

// Snapshot is everything the renderer needs.
type Snapshot struct {
	Selection selection.Selection
	State     State
}
