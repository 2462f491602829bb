package internal

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	OIDCID       *string   `json:"oidc_id"`
	Email        string    `json:"email"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser creates an account. Password may be empty only for accounts that
// log in through OIDC; the service layer enforces that.
type NewUser struct {
	Username        string  `json:"username" validate:"required"`
	Password        string  `json:"password" validate:"omitempty,ne=password"`
	PasswordConfirm string  `json:"password_confirm"`
	PasswordHash    string  `json:"-"`
	FullName        string  `json:"full_name" validate:"required"`
	OIDCID          *string `json:"oidc_id,omitempty"`
	Email           string  `json:"email" validate:"required,contains=@"`
	IsAdmin         bool    `json:"is_admin"`
}

type ChangeUser struct {
	Username        MaybeSet[string]  `json:"username,omitzero" validate:"omitnil,min=1"`
	Password        MaybeSet[string]  `json:"password,omitzero" validate:"omitempty,ne=password"`
	PasswordConfirm MaybeSet[string]  `json:"password_confirm,omitzero"`
	PasswordHash    MaybeSet[string]  `json:"-"`
	FullName        MaybeSet[string]  `json:"full_name,omitzero" validate:"omitnil,min=1"`
	OIDCID          MaybeSet[*string] `json:"oidc_id,omitzero"`
	Email           MaybeSet[string]  `json:"email,omitzero" validate:"omitnil,contains=@"`
	IsAdmin         MaybeSet[bool]    `json:"is_admin,omitzero"`
}

func (c *ChangeUser) Apply(u *User) {
	c.Username.Apply(&u.Username)
	c.PasswordHash.Apply(&u.PasswordHash)
	c.FullName.Apply(&u.FullName)
	c.OIDCID.Apply(&u.OIDCID)
	c.Email.Apply(&u.Email)
	c.IsAdmin.Apply(&u.IsAdmin)
}

// Session is a server-side login record keyed by the cookie value.
type Session struct {
	ID        string      `json:"id"`
	Data      SessionData `json:"data"`
	ExpiresAt time.Time   `json:"expiry_date"`
}

type SessionData struct {
	UserID   int64  `json:"user_id"`
	AuthHash string `json:"auth_hash"`
}

// HSV is a colour sample.
type HSV struct {
	Hue        float64 `json:"hue" validate:"gte=-180,lte=360"`
	Saturation float64 `json:"saturation" validate:"gte=0,lte=1"`
	Value      float64 `json:"value" validate:"gte=0,lte=1"`
}

// Urgency runs from 0 (none) to 5.
type Urgency int

// Bristol is the Bristol stool scale, 0 to 7.
type Bristol int

type ExerciseType string

const (
	ExerciseWalking       ExerciseType = "walking"
	ExerciseRunning       ExerciseType = "running"
	ExerciseCycling       ExerciseType = "cycling"
	ExerciseIndoorCycling ExerciseType = "indoor_cycling"
	ExerciseJumping       ExerciseType = "jumping"
	ExerciseSkipping      ExerciseType = "skipping"
	ExerciseFlying        ExerciseType = "flying"
	ExerciseOther         ExerciseType = "other"
)

func (t ExerciseType) Title() string {
	switch t {
	case ExerciseWalking:
		return "Walking"
	case ExerciseRunning:
		return "Running"
	case ExerciseCycling:
		return "Cycling"
	case ExerciseIndoorCycling:
		return "Indoor Cycling"
	case ExerciseJumping:
		return "Jumping"
	case ExerciseSkipping:
		return "Skipping"
	case ExerciseFlying:
		return "Flying"
	default:
		return "Other"
	}
}

// ExerciseRpe is the rate of perceived exertion, 1 to 10.
type ExerciseRpe int

var rpeTitles = [...]string{
	"Very light",
	"Light",
	"Moderate",
	"Somewhat hard",
	"Hard",
	"Harder",
	"Very hard",
	"Very, very hard",
	"Extremely hard",
	"Maximal effort",
}

func (r ExerciseRpe) Title() string {
	if r < 1 || int(r) > len(rpeTitles) {
		return ""
	}
	return rpeTitles[r-1]
}

type ConsumptionType string

const (
	ConsumptionDigest      ConsumptionType = "digest"
	ConsumptionInhaleNose  ConsumptionType = "inhale_nose"
	ConsumptionInhaleMouth ConsumptionType = "inhale_mouth"
	ConsumptionSpitOut     ConsumptionType = "spit_out"
	ConsumptionInject      ConsumptionType = "inject"
	ConsumptionApplySkin   ConsumptionType = "apply_skin"
)

func (t ConsumptionType) Title() string {
	switch t {
	case ConsumptionDigest:
		return "Digest"
	case ConsumptionInhaleNose:
		return "Inhale nose"
	case ConsumptionInhaleMouth:
		return "Inhale mouth"
	case ConsumptionSpitOut:
		return "Spit out"
	case ConsumptionInject:
		return "Inject"
	case ConsumptionApplySkin:
		return "Apply skin"
	default:
		return string(t)
	}
}

type ConsumableUnit string

const (
	UnitMillilitres        ConsumableUnit = "millilitres"
	UnitGrams              ConsumableUnit = "grams"
	UnitInternationalUnits ConsumableUnit = "international_units"
	UnitNumber             ConsumableUnit = "number"
)

// Postfix is appended to quantities when displayed.
func (u ConsumableUnit) Postfix() string {
	switch u {
	case UnitMillilitres:
		return "ml"
	case UnitGrams:
		return "g"
	case UnitInternationalUnits:
		return "IU"
	default:
		return ""
	}
}

// EventMeta is shared by every logged event.
type EventMeta struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Time      time.Time `json:"time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *EventMeta) Meta() *EventMeta { return m }

type NewEventMeta struct {
	UserID int64     `json:"user_id"`
	Time   time.Time `json:"time" validate:"required"`
}

func (m *NewEventMeta) NewMeta() *NewEventMeta { return m }

type ChangeEventMeta struct {
	UserID MaybeSet[int64]     `json:"user_id,omitzero"`
	Time   MaybeSet[time.Time] `json:"time,omitzero" validate:"omitnil,required"`
}

func (m *ChangeEventMeta) ChangeMeta() *ChangeEventMeta { return m }

func (m *ChangeEventMeta) apply(e *EventMeta) {
	m.UserID.Apply(&e.UserID)
	m.Time.Apply(&e.Time)
}

// EventPtr, NewEventPtr and ChangeEventPtr tie an event type to its create
// and change payloads.
type EventPtr[E any] interface {
	*E
	Meta() *EventMeta
}

type NewEventPtr[E, N any] interface {
	*N
	NewMeta() *NewEventMeta
	Build(meta EventMeta) *E
}

type ChangeEventPtr[E, C any] interface {
	*C
	ChangeMeta() *ChangeEventMeta
	Apply(e *E)
}
