package internal

import (
	"github.com/shopspring/decimal"
)

type Wee struct {
	EventMeta
	Duration Duration `json:"duration"`
	Urgency  Urgency  `json:"urgency"`
	Mls      int      `json:"mls"`
	Colour   HSV      `json:"colour"`
	Comments *string  `json:"comments"`
}

type NewWee struct {
	NewEventMeta
	Duration Duration `json:"duration"`
	Urgency  Urgency  `json:"urgency" validate:"gte=0,lte=5"`
	Mls      int      `json:"mls" validate:"gte=0"`
	Colour   HSV      `json:"colour"`
	Comments *string  `json:"comments"`
}

func (n *NewWee) Build(meta EventMeta) *Wee {
	return &Wee{EventMeta: meta, Duration: n.Duration, Urgency: n.Urgency, Mls: n.Mls, Colour: n.Colour, Comments: n.Comments}
}

type ChangeWee struct {
	ChangeEventMeta
	Duration MaybeSet[Duration] `json:"duration,omitzero"`
	Urgency  MaybeSet[Urgency]  `json:"urgency,omitzero" validate:"omitnil,gte=0,lte=5"`
	Mls      MaybeSet[int]      `json:"mls,omitzero" validate:"omitnil,gte=0"`
	Colour   MaybeSet[HSV]      `json:"colour,omitzero"`
	Comments MaybeString        `json:"comments,omitzero"`
}

func (c *ChangeWee) Apply(w *Wee) {
	c.ChangeEventMeta.apply(&w.EventMeta)
	c.Duration.Apply(&w.Duration)
	c.Urgency.Apply(&w.Urgency)
	c.Mls.Apply(&w.Mls)
	c.Colour.Apply(&w.Colour)
	c.Comments.Apply(&w.Comments)
}

type WeeUrge struct {
	EventMeta
	Urgency  Urgency `json:"urgency"`
	Comments *string `json:"comments"`
}

type NewWeeUrge struct {
	NewEventMeta
	Urgency  Urgency `json:"urgency" validate:"gte=0,lte=5"`
	Comments *string `json:"comments"`
}

func (n *NewWeeUrge) Build(meta EventMeta) *WeeUrge {
	return &WeeUrge{EventMeta: meta, Urgency: n.Urgency, Comments: n.Comments}
}

type ChangeWeeUrge struct {
	ChangeEventMeta
	Urgency  MaybeSet[Urgency] `json:"urgency,omitzero" validate:"omitnil,gte=0,lte=5"`
	Comments MaybeString       `json:"comments,omitzero"`
}

func (c *ChangeWeeUrge) Apply(w *WeeUrge) {
	c.ChangeEventMeta.apply(&w.EventMeta)
	c.Urgency.Apply(&w.Urgency)
	c.Comments.Apply(&w.Comments)
}

type Poo struct {
	EventMeta
	Duration Duration `json:"duration"`
	Urgency  Urgency  `json:"urgency"`
	Quantity int      `json:"quantity"`
	Bristol  Bristol  `json:"bristol"`
	Colour   HSV      `json:"colour"`
	Comments *string  `json:"comments"`
}

type NewPoo struct {
	NewEventMeta
	Duration Duration `json:"duration"`
	Urgency  Urgency  `json:"urgency" validate:"gte=0,lte=5"`
	Quantity int      `json:"quantity" validate:"gte=0,lte=10"`
	Bristol  Bristol  `json:"bristol" validate:"gte=0,lte=7"`
	Colour   HSV      `json:"colour"`
	Comments *string  `json:"comments"`
}

func (n *NewPoo) Build(meta EventMeta) *Poo {
	return &Poo{
		EventMeta: meta,
		Duration:  n.Duration,
		Urgency:   n.Urgency,
		Quantity:  n.Quantity,
		Bristol:   n.Bristol,
		Colour:    n.Colour,
		Comments:  n.Comments,
	}
}

type ChangePoo struct {
	ChangeEventMeta
	Duration MaybeSet[Duration] `json:"duration,omitzero"`
	Urgency  MaybeSet[Urgency]  `json:"urgency,omitzero" validate:"omitnil,gte=0,lte=5"`
	Quantity MaybeSet[int]      `json:"quantity,omitzero" validate:"omitnil,gte=0,lte=10"`
	Bristol  MaybeSet[Bristol]  `json:"bristol,omitzero" validate:"omitnil,gte=0,lte=7"`
	Colour   MaybeSet[HSV]      `json:"colour,omitzero"`
	Comments MaybeString        `json:"comments,omitzero"`
}

func (c *ChangePoo) Apply(p *Poo) {
	c.ChangeEventMeta.apply(&p.EventMeta)
	c.Duration.Apply(&p.Duration)
	c.Urgency.Apply(&p.Urgency)
	c.Quantity.Apply(&p.Quantity)
	c.Bristol.Apply(&p.Bristol)
	c.Colour.Apply(&p.Colour)
	c.Comments.Apply(&p.Comments)
}

type Exercise struct {
	EventMeta
	Duration     Duration         `json:"duration"`
	Location     *string          `json:"location"`
	Distance     *decimal.Decimal `json:"distance"`
	Calories     *int             `json:"calories"`
	Rpe          *ExerciseRpe     `json:"rpe"`
	ExerciseType ExerciseType     `json:"exercise_type"`
	Comments     *string          `json:"comments"`
}

type NewExercise struct {
	NewEventMeta
	Duration     Duration         `json:"duration"`
	Location     *string          `json:"location"`
	Distance     *decimal.Decimal `json:"distance"`
	Calories     *int             `json:"calories" validate:"omitempty,gte=0,lte=10000"`
	Rpe          *ExerciseRpe     `json:"rpe" validate:"omitempty,gte=1,lte=10"`
	ExerciseType ExerciseType     `json:"exercise_type" validate:"required,oneof=walking running cycling indoor_cycling jumping skipping flying other"`
	Comments     *string          `json:"comments"`
}

func (n *NewExercise) Build(meta EventMeta) *Exercise {
	return &Exercise{
		EventMeta:    meta,
		Duration:     n.Duration,
		Location:     n.Location,
		Distance:     n.Distance,
		Calories:     n.Calories,
		Rpe:          n.Rpe,
		ExerciseType: n.ExerciseType,
		Comments:     n.Comments,
	}
}

type ChangeExercise struct {
	ChangeEventMeta
	Duration     MaybeSet[Duration]     `json:"duration,omitzero"`
	Location     MaybeString            `json:"location,omitzero"`
	Distance     MaybeDecimal           `json:"distance,omitzero"`
	Calories     MaybeI32               `json:"calories,omitzero" validate:"omitnil,gte=0,lte=10000"`
	Rpe          MaybeSet[*ExerciseRpe] `json:"rpe,omitzero" validate:"omitnil,gte=1,lte=10"`
	ExerciseType MaybeSet[ExerciseType] `json:"exercise_type,omitzero" validate:"omitnil,oneof=walking running cycling indoor_cycling jumping skipping flying other"`
	Comments     MaybeString            `json:"comments,omitzero"`
}

func (c *ChangeExercise) Apply(e *Exercise) {
	c.ChangeEventMeta.apply(&e.EventMeta)
	c.Duration.Apply(&e.Duration)
	c.Location.Apply(&e.Location)
	c.Distance.Apply(&e.Distance)
	c.Calories.Apply(&e.Calories)
	c.Rpe.Apply(&e.Rpe)
	c.ExerciseType.Apply(&e.ExerciseType)
	c.Comments.Apply(&e.Comments)
}

type HealthMetric struct {
	EventMeta
	Pulse              *int             `json:"pulse"`
	BloodGlucose       *decimal.Decimal `json:"blood_glucose"`
	SystolicBP         *int             `json:"systolic_bp"`
	DiastolicBP        *int             `json:"diastolic_bp"`
	Weight             *decimal.Decimal `json:"weight"`
	Height             *int             `json:"height"`
	WaistCircumference *decimal.Decimal `json:"waist_circumference"`
	Comments           *string          `json:"comments"`
}

type NewHealthMetric struct {
	NewEventMeta
	Pulse              *int             `json:"pulse" validate:"omitempty,gte=30,lte=220"`
	BloodGlucose       *decimal.Decimal `json:"blood_glucose" validate:"omitempty,gte=0,lte=50"`
	SystolicBP         *int             `json:"systolic_bp" validate:"omitempty,gte=50,lte=300"`
	DiastolicBP        *int             `json:"diastolic_bp" validate:"omitempty,gte=30,lte=200"`
	Weight             *decimal.Decimal `json:"weight" validate:"omitempty,gte=0,lte=500"`
	Height             *int             `json:"height" validate:"omitempty,gte=30,lte=300"`
	WaistCircumference *decimal.Decimal `json:"waist_circumference" validate:"omitempty,gte=30,lte=300"`
	Comments           *string          `json:"comments"`
}

func (n *NewHealthMetric) Build(meta EventMeta) *HealthMetric {
	return &HealthMetric{
		EventMeta:          meta,
		Pulse:              n.Pulse,
		BloodGlucose:       n.BloodGlucose,
		SystolicBP:         n.SystolicBP,
		DiastolicBP:        n.DiastolicBP,
		Weight:             n.Weight,
		Height:             n.Height,
		WaistCircumference: n.WaistCircumference,
		Comments:           n.Comments,
	}
}

type ChangeHealthMetric struct {
	ChangeEventMeta
	Pulse              MaybeI32     `json:"pulse,omitzero" validate:"omitnil,gte=30,lte=220"`
	BloodGlucose       MaybeDecimal `json:"blood_glucose,omitzero" validate:"omitnil,gte=0,lte=50"`
	SystolicBP         MaybeI32     `json:"systolic_bp,omitzero" validate:"omitnil,gte=50,lte=300"`
	DiastolicBP        MaybeI32     `json:"diastolic_bp,omitzero" validate:"omitnil,gte=30,lte=200"`
	Weight             MaybeDecimal `json:"weight,omitzero" validate:"omitnil,gte=0,lte=500"`
	Height             MaybeI32     `json:"height,omitzero" validate:"omitnil,gte=30,lte=300"`
	WaistCircumference MaybeDecimal `json:"waist_circumference,omitzero" validate:"omitnil,gte=30,lte=300"`
	Comments           MaybeString  `json:"comments,omitzero"`
}

func (c *ChangeHealthMetric) Apply(h *HealthMetric) {
	c.ChangeEventMeta.apply(&h.EventMeta)
	c.Pulse.Apply(&h.Pulse)
	c.BloodGlucose.Apply(&h.BloodGlucose)
	c.SystolicBP.Apply(&h.SystolicBP)
	c.DiastolicBP.Apply(&h.DiastolicBP)
	c.Weight.Apply(&h.Weight)
	c.Height.Apply(&h.Height)
	c.WaistCircumference.Apply(&h.WaistCircumference)
	c.Comments.Apply(&h.Comments)
}

type Reflux struct {
	EventMeta
	Duration Duration `json:"duration"`
	Location *string  `json:"location"`
	Severity int      `json:"severity"`
	Comments *string  `json:"comments"`
}

type NewReflux struct {
	NewEventMeta
	Duration Duration `json:"duration"`
	Location *string  `json:"location"`
	Severity int      `json:"severity" validate:"gte=0,lte=10"`
	Comments *string  `json:"comments"`
}

func (n *NewReflux) Build(meta EventMeta) *Reflux {
	return &Reflux{EventMeta: meta, Duration: n.Duration, Location: n.Location, Severity: n.Severity, Comments: n.Comments}
}

type ChangeReflux struct {
	ChangeEventMeta
	Duration MaybeSet[Duration] `json:"duration,omitzero"`
	Location MaybeString        `json:"location,omitzero"`
	Severity MaybeSet[int]      `json:"severity,omitzero" validate:"omitnil,gte=0,lte=10"`
	Comments MaybeString        `json:"comments,omitzero"`
}

func (c *ChangeReflux) Apply(r *Reflux) {
	c.ChangeEventMeta.apply(&r.EventMeta)
	c.Duration.Apply(&r.Duration)
	c.Location.Apply(&r.Location)
	c.Severity.Apply(&r.Severity)
	c.Comments.Apply(&r.Comments)
}

type Note struct {
	EventMeta
	Comments *string `json:"comments"`
}

type NewNote struct {
	NewEventMeta
	Comments *string `json:"comments"`
}

func (n *NewNote) Build(meta EventMeta) *Note {
	return &Note{EventMeta: meta, Comments: n.Comments}
}

type ChangeNote struct {
	ChangeEventMeta
	Comments MaybeString `json:"comments,omitzero"`
}

func (c *ChangeNote) Apply(n *Note) {
	c.ChangeEventMeta.apply(&n.EventMeta)
	c.Comments.Apply(&n.Comments)
}
