package models

import "time"

// SignUpRequest is the body of POST /auth/signup.
type SignUpRequest struct {
	Email      string   `json:"email" validate:"required,email"`
	Password   string   `json:"password" validate:"required,max=256"`
	FirstName  string   `json:"first_name" validate:"omitempty,max=100"`
	LastName   string   `json:"last_name" validate:"omitempty,max=100"`
	Age        *int     `json:"age" validate:"omitempty,gte=0,lte=120"`
	Profession string   `json:"profession" validate:"omitempty,max=200"`
	University string   `json:"university" validate:"omitempty,max=200"`
	Skills     []string `json:"skills" validate:"omitempty,dive,max=100"`
	Interests  []string `json:"interests" validate:"omitempty,dive,max=100"`
}

// SignInRequest is the body of POST /auth/signin.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserUpdateRequest is a partial profile update. Nil fields are left untouched.
// Email, identity subject and timestamps are not updatable.
type UserUpdateRequest struct {
	FirstName        *string   `json:"first_name" validate:"omitempty,max=100"`
	LastName         *string   `json:"last_name" validate:"omitempty,max=100"`
	PhoneNumber      *string   `json:"phone_number" validate:"omitempty,max=32"`
	CanvasToken      *string   `json:"canvas_token" validate:"omitempty,max=512"`
	Coins            *int      `json:"coins" validate:"omitempty,gte=0"`
	ProfileImagePath *string   `json:"profile_image_path" validate:"omitempty,max=512"`
	Bio              *string   `json:"bio" validate:"omitempty,max=2000"`
	Profession       *string   `json:"profession" validate:"omitempty,max=200"`
	University       *string   `json:"university" validate:"omitempty,max=200"`
	Age              *int      `json:"age" validate:"omitempty,gte=0,lte=120"`
	Location         *string   `json:"location" validate:"omitempty,max=200"`
	Skills           *[]string `json:"skills" validate:"omitempty,dive,max=100"`
	Interests        *[]string `json:"interests" validate:"omitempty,dive,max=100"`
	Events           *[]Event  `json:"events" validate:"omitempty,dive"`
	QAPairs          *[]QAPair `json:"qa_pairs" validate:"omitempty,dive"`
}

// Patch returns a User carrying only the supplied fields, together with the
// names of those fields. Writing just these columns leaves the rest of the
// stored profile untouched.
func (r *UserUpdateRequest) Patch() (*User, []string) {
	patch := &User{}
	var fields []string
	set := func(name string, supplied bool, assign func()) {
		if supplied {
			assign()
			fields = append(fields, name)
		}
	}

	set("FirstName", r.FirstName != nil, func() { patch.FirstName = *r.FirstName })
	set("LastName", r.LastName != nil, func() { patch.LastName = *r.LastName })
	set("PhoneNumber", r.PhoneNumber != nil, func() { patch.PhoneNumber = *r.PhoneNumber })
	set("CanvasToken", r.CanvasToken != nil, func() { patch.CanvasToken = *r.CanvasToken })
	set("Coins", r.Coins != nil, func() { patch.Coins = *r.Coins })
	set("ProfileImagePath", r.ProfileImagePath != nil, func() { patch.ProfileImagePath = *r.ProfileImagePath })
	set("Bio", r.Bio != nil, func() { patch.Bio = *r.Bio })
	set("Profession", r.Profession != nil, func() { patch.Profession = *r.Profession })
	set("University", r.University != nil, func() { patch.University = *r.University })
	set("Age", r.Age != nil, func() {
		age := *r.Age
		patch.Age = &age
	})
	set("Location", r.Location != nil, func() { patch.Location = *r.Location })
	set("Skills", r.Skills != nil, func() { patch.Skills = append([]string{}, (*r.Skills)...) })
	set("Interests", r.Interests != nil, func() { patch.Interests = append([]string{}, (*r.Interests)...) })
	set("Events", r.Events != nil, func() { patch.Events = append([]Event{}, (*r.Events)...) })
	set("QAPairs", r.QAPairs != nil, func() { patch.QAPairs = append([]QAPair{}, (*r.QAPairs)...) })

	return patch, fields
}

// JournalCreateRequest is the body of POST /journals. The owner is the caller.
type JournalCreateRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=20000"`
	Date        string `json:"date" validate:"omitempty,datetime=01-02-2006"`
	BgColor     string `json:"bgColor" validate:"omitempty,max=50"`
}

// AnalyzeRequest is the body of POST /journal/analyze.
type AnalyzeRequest struct {
	Content string `json:"content" validate:"required,max=20000"`
}

// AnalyzeResponse wraps an emotion analysis result.
type AnalyzeResponse struct {
	Status   string          `json:"status"`
	Analysis EmotionAnalysis `json:"analysis"`
}

// InsightsQuery selects the journals aggregated by GET /journals/insights.
type InsightsQuery struct {
	Email string `query:"email" validate:"omitempty,email"`
	Start string `query:"start" validate:"omitempty,datetime=01-02-2006"`
	End   string `query:"end" validate:"omitempty,datetime=01-02-2006"`
}

// OfferCreateRequest is the body of POST /offers.
type OfferCreateRequest struct {
	Title      string `json:"title" validate:"required,min=1,max=100"`
	OwnerEmail string `json:"ownerEmail" validate:"omitempty,email"`
	Detail     string `json:"detail" validate:"omitempty,max=1000"`
	Skill      string `json:"skill" validate:"omitempty,max=50"`
	PointCost  int    `json:"pointCost" validate:"gte=0"`
	Duration   int    `json:"duration" validate:"gte=0,lte=3650"`
}

// OfferUpdateRequest is a partial offer update by its owner.
type OfferUpdateRequest struct {
	Title     *string `json:"title" validate:"omitempty,min=1,max=100"`
	Detail    *string `json:"detail" validate:"omitempty,min=1,max=1000"`
	Skill     *string `json:"skill" validate:"omitempty,min=1,max=50"`
	PointCost *int    `json:"pointCost" validate:"omitempty,gt=0"`
	Duration  *int    `json:"duration" validate:"omitempty,gt=0,lte=3650"`
}

// Empty reports whether no field was supplied.
func (r *OfferUpdateRequest) Empty() bool {
	return r.Title == nil && r.Detail == nil && r.Skill == nil && r.PointCost == nil && r.Duration == nil
}

// OfferQuery filters GET /offers.
type OfferQuery struct {
	Skip  int    `query:"skip" validate:"gte=0"`
	Limit int    `query:"limit" validate:"gte=1,lte=100"`
	Skill string `query:"skill" validate:"omitempty,max=50"`
}

// PageQuery is skip/limit pagination.
type PageQuery struct {
	Skip  int `query:"skip" validate:"gte=0"`
	Limit int `query:"limit" validate:"gte=1,lte=100"`
}

// PromptRequest is the body of POST /openai/test.
type PromptRequest struct {
	Prompt string `json:"prompt" validate:"required,max=8000"`
}

// CompletionResponse is a raw LLM completion.
type CompletionResponse struct {
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
	Model     string    `json:"model"`
}
