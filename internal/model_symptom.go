package internal

// Symptom records an intensity from 0 to 10 for each tracked symptom.
type Symptom struct {
	EventMeta
	AppetiteLoss            int     `json:"appetite_loss"`
	Fever                   int     `json:"fever"`
	Cough                   int     `json:"cough"`
	SoreThroat              int     `json:"sore_throat"`
	NasalSymptom            int     `json:"nasal_symptom"`
	Sneezing                int     `json:"sneezing"`
	HeartBurn               int     `json:"heart_burn"`
	AbdominalPain           int     `json:"abdominal_pain"`
	Diarrhea                int     `json:"diarrhea"`
	Constipation            int     `json:"constipation"`
	LowerBackPain           int     `json:"lower_back_pain"`
	UpperBackPain           int     `json:"upper_back_pain"`
	NeckPain                int     `json:"neck_pain"`
	JointPain               int     `json:"joint_pain"`
	Headache                int     `json:"headache"`
	Nausea                  int     `json:"nausea"`
	Dizziness               int     `json:"dizziness"`
	StomachAche             int     `json:"stomach_ache"`
	ChestPain               int     `json:"chest_pain"`
	ShortnessOfBreath       int     `json:"shortness_of_breath"`
	Fatigue                 int     `json:"fatigue"`
	Anxiety                 int     `json:"anxiety"`
	Depression              int     `json:"depression"`
	Insomnia                int     `json:"insomnia"`
	ShoulderPain            int     `json:"shoulder_pain"`
	HandPain                int     `json:"hand_pain"`
	FootPain                int     `json:"foot_pain"`
	WristPain               int     `json:"wrist_pain"`
	DentalPain              int     `json:"dental_pain"`
	EyePain                 int     `json:"eye_pain"`
	EarPain                 int     `json:"ear_pain"`
	FeelingHot              int     `json:"feeling_hot"`
	FeelingCold             int     `json:"feeling_cold"`
	FeelingThirsty          int     `json:"feeling_thirsty"`
	NasalSymptomDescription *string `json:"nasal_symptom_description"`
	AbdominalPainLocation   *string `json:"abdominal_pain_location"`
	DentalPainDescription   *string `json:"dental_pain_description"`
	Comments                *string `json:"comments"`
}

type NewSymptom struct {
	NewEventMeta
	AppetiteLoss            int     `json:"appetite_loss" validate:"gte=0,lte=10"`
	Fever                   int     `json:"fever" validate:"gte=0,lte=10"`
	Cough                   int     `json:"cough" validate:"gte=0,lte=10"`
	SoreThroat              int     `json:"sore_throat" validate:"gte=0,lte=10"`
	NasalSymptom            int     `json:"nasal_symptom" validate:"gte=0,lte=10"`
	Sneezing                int     `json:"sneezing" validate:"gte=0,lte=10"`
	HeartBurn               int     `json:"heart_burn" validate:"gte=0,lte=10"`
	AbdominalPain           int     `json:"abdominal_pain" validate:"gte=0,lte=10"`
	Diarrhea                int     `json:"diarrhea" validate:"gte=0,lte=10"`
	Constipation            int     `json:"constipation" validate:"gte=0,lte=10"`
	LowerBackPain           int     `json:"lower_back_pain" validate:"gte=0,lte=10"`
	UpperBackPain           int     `json:"upper_back_pain" validate:"gte=0,lte=10"`
	NeckPain                int     `json:"neck_pain" validate:"gte=0,lte=10"`
	JointPain               int     `json:"joint_pain" validate:"gte=0,lte=10"`
	Headache                int     `json:"headache" validate:"gte=0,lte=10"`
	Nausea                  int     `json:"nausea" validate:"gte=0,lte=10"`
	Dizziness               int     `json:"dizziness" validate:"gte=0,lte=10"`
	StomachAche             int     `json:"stomach_ache" validate:"gte=0,lte=10"`
	ChestPain               int     `json:"chest_pain" validate:"gte=0,lte=10"`
	ShortnessOfBreath       int     `json:"shortness_of_breath" validate:"gte=0,lte=10"`
	Fatigue                 int     `json:"fatigue" validate:"gte=0,lte=10"`
	Anxiety                 int     `json:"anxiety" validate:"gte=0,lte=10"`
	Depression              int     `json:"depression" validate:"gte=0,lte=10"`
	Insomnia                int     `json:"insomnia" validate:"gte=0,lte=10"`
	ShoulderPain            int     `json:"shoulder_pain" validate:"gte=0,lte=10"`
	HandPain                int     `json:"hand_pain" validate:"gte=0,lte=10"`
	FootPain                int     `json:"foot_pain" validate:"gte=0,lte=10"`
	WristPain               int     `json:"wrist_pain" validate:"gte=0,lte=10"`
	DentalPain              int     `json:"dental_pain" validate:"gte=0,lte=10"`
	EyePain                 int     `json:"eye_pain" validate:"gte=0,lte=10"`
	EarPain                 int     `json:"ear_pain" validate:"gte=0,lte=10"`
	FeelingHot              int     `json:"feeling_hot" validate:"gte=0,lte=10"`
	FeelingCold             int     `json:"feeling_cold" validate:"gte=0,lte=10"`
	FeelingThirsty          int     `json:"feeling_thirsty" validate:"gte=0,lte=10"`
	NasalSymptomDescription *string `json:"nasal_symptom_description"`
	AbdominalPainLocation   *string `json:"abdominal_pain_location"`
	DentalPainDescription   *string `json:"dental_pain_description"`
	Comments                *string `json:"comments"`
}

func (n *NewSymptom) Build(meta EventMeta) *Symptom {
	return &Symptom{
		EventMeta:               meta,
		AppetiteLoss:            n.AppetiteLoss,
		Fever:                   n.Fever,
		Cough:                   n.Cough,
		SoreThroat:              n.SoreThroat,
		NasalSymptom:            n.NasalSymptom,
		Sneezing:                n.Sneezing,
		HeartBurn:               n.HeartBurn,
		AbdominalPain:           n.AbdominalPain,
		Diarrhea:                n.Diarrhea,
		Constipation:            n.Constipation,
		LowerBackPain:           n.LowerBackPain,
		UpperBackPain:           n.UpperBackPain,
		NeckPain:                n.NeckPain,
		JointPain:               n.JointPain,
		Headache:                n.Headache,
		Nausea:                  n.Nausea,
		Dizziness:               n.Dizziness,
		StomachAche:             n.StomachAche,
		ChestPain:               n.ChestPain,
		ShortnessOfBreath:       n.ShortnessOfBreath,
		Fatigue:                 n.Fatigue,
		Anxiety:                 n.Anxiety,
		Depression:              n.Depression,
		Insomnia:                n.Insomnia,
		ShoulderPain:            n.ShoulderPain,
		HandPain:                n.HandPain,
		FootPain:                n.FootPain,
		WristPain:               n.WristPain,
		DentalPain:              n.DentalPain,
		EyePain:                 n.EyePain,
		EarPain:                 n.EarPain,
		FeelingHot:              n.FeelingHot,
		FeelingCold:             n.FeelingCold,
		FeelingThirsty:          n.FeelingThirsty,
		NasalSymptomDescription: n.NasalSymptomDescription,
		AbdominalPainLocation:   n.AbdominalPainLocation,
		DentalPainDescription:   n.DentalPainDescription,
		Comments:                n.Comments,
	}
}

type ChangeSymptom struct {
	ChangeEventMeta
	AppetiteLoss            MaybeSet[int] `json:"appetite_loss,omitzero" validate:"omitnil,gte=0,lte=10"`
	Fever                   MaybeSet[int] `json:"fever,omitzero" validate:"omitnil,gte=0,lte=10"`
	Cough                   MaybeSet[int] `json:"cough,omitzero" validate:"omitnil,gte=0,lte=10"`
	SoreThroat              MaybeSet[int] `json:"sore_throat,omitzero" validate:"omitnil,gte=0,lte=10"`
	NasalSymptom            MaybeSet[int] `json:"nasal_symptom,omitzero" validate:"omitnil,gte=0,lte=10"`
	Sneezing                MaybeSet[int] `json:"sneezing,omitzero" validate:"omitnil,gte=0,lte=10"`
	HeartBurn               MaybeSet[int] `json:"heart_burn,omitzero" validate:"omitnil,gte=0,lte=10"`
	AbdominalPain           MaybeSet[int] `json:"abdominal_pain,omitzero" validate:"omitnil,gte=0,lte=10"`
	Diarrhea                MaybeSet[int] `json:"diarrhea,omitzero" validate:"omitnil,gte=0,lte=10"`
	Constipation            MaybeSet[int] `json:"constipation,omitzero" validate:"omitnil,gte=0,lte=10"`
	LowerBackPain           MaybeSet[int] `json:"lower_back_pain,omitzero" validate:"omitnil,gte=0,lte=10"`
	UpperBackPain           MaybeSet[int] `json:"upper_back_pain,omitzero" validate:"omitnil,gte=0,lte=10"`
	NeckPain                MaybeSet[int] `json:"neck_pain,omitzero" validate:"omitnil,gte=0,lte=10"`
	JointPain               MaybeSet[int] `json:"joint_pain,omitzero" validate:"omitnil,gte=0,lte=10"`
	Headache                MaybeSet[int] `json:"headache,omitzero" validate:"omitnil,gte=0,lte=10"`
	Nausea                  MaybeSet[int] `json:"nausea,omitzero" validate:"omitnil,gte=0,lte=10"`
	Dizziness               MaybeSet[int] `json:"dizziness,omitzero" validate:"omitnil,gte=0,lte=10"`
	StomachAche             MaybeSet[int] `json:"stomach_ache,omitzero" validate:"omitnil,gte=0,lte=10"`
	ChestPain               MaybeSet[int] `json:"chest_pain,omitzero" validate:"omitnil,gte=0,lte=10"`
	ShortnessOfBreath       MaybeSet[int] `json:"shortness_of_breath,omitzero" validate:"omitnil,gte=0,lte=10"`
	Fatigue                 MaybeSet[int] `json:"fatigue,omitzero" validate:"omitnil,gte=0,lte=10"`
	Anxiety                 MaybeSet[int] `json:"anxiety,omitzero" validate:"omitnil,gte=0,lte=10"`
	Depression              MaybeSet[int] `json:"depression,omitzero" validate:"omitnil,gte=0,lte=10"`
	Insomnia                MaybeSet[int] `json:"insomnia,omitzero" validate:"omitnil,gte=0,lte=10"`
	ShoulderPain            MaybeSet[int] `json:"shoulder_pain,omitzero" validate:"omitnil,gte=0,lte=10"`
	HandPain                MaybeSet[int] `json:"hand_pain,omitzero" validate:"omitnil,gte=0,lte=10"`
	FootPain                MaybeSet[int] `json:"foot_pain,omitzero" validate:"omitnil,gte=0,lte=10"`
	WristPain               MaybeSet[int] `json:"wrist_pain,omitzero" validate:"omitnil,gte=0,lte=10"`
	DentalPain              MaybeSet[int] `json:"dental_pain,omitzero" validate:"omitnil,gte=0,lte=10"`
	EyePain                 MaybeSet[int] `json:"eye_pain,omitzero" validate:"omitnil,gte=0,lte=10"`
	EarPain                 MaybeSet[int] `json:"ear_pain,omitzero" validate:"omitnil,gte=0,lte=10"`
	FeelingHot              MaybeSet[int] `json:"feeling_hot,omitzero" validate:"omitnil,gte=0,lte=10"`
	FeelingCold             MaybeSet[int] `json:"feeling_cold,omitzero" validate:"omitnil,gte=0,lte=10"`
	FeelingThirsty          MaybeSet[int] `json:"feeling_thirsty,omitzero" validate:"omitnil,gte=0,lte=10"`
	NasalSymptomDescription MaybeString   `json:"nasal_symptom_description,omitzero"`
	AbdominalPainLocation   MaybeString   `json:"abdominal_pain_location,omitzero"`
	DentalPainDescription   MaybeString   `json:"dental_pain_description,omitzero"`
	Comments                MaybeString   `json:"comments,omitzero"`
}

func (c *ChangeSymptom) Apply(s *Symptom) {
	c.ChangeEventMeta.apply(&s.EventMeta)
	c.AppetiteLoss.Apply(&s.AppetiteLoss)
	c.Fever.Apply(&s.Fever)
	c.Cough.Apply(&s.Cough)
	c.SoreThroat.Apply(&s.SoreThroat)
	c.NasalSymptom.Apply(&s.NasalSymptom)
	c.Sneezing.Apply(&s.Sneezing)
	c.HeartBurn.Apply(&s.HeartBurn)
	c.AbdominalPain.Apply(&s.AbdominalPain)
	c.Diarrhea.Apply(&s.Diarrhea)
	c.Constipation.Apply(&s.Constipation)
	c.LowerBackPain.Apply(&s.LowerBackPain)
	c.UpperBackPain.Apply(&s.UpperBackPain)
	c.NeckPain.Apply(&s.NeckPain)
	c.JointPain.Apply(&s.JointPain)
	c.Headache.Apply(&s.Headache)
	c.Nausea.Apply(&s.Nausea)
	c.Dizziness.Apply(&s.Dizziness)
	c.StomachAche.Apply(&s.StomachAche)
	c.ChestPain.Apply(&s.ChestPain)
	c.ShortnessOfBreath.Apply(&s.ShortnessOfBreath)
	c.Fatigue.Apply(&s.Fatigue)
	c.Anxiety.Apply(&s.Anxiety)
	c.Depression.Apply(&s.Depression)
	c.Insomnia.Apply(&s.Insomnia)
	c.ShoulderPain.Apply(&s.ShoulderPain)
	c.HandPain.Apply(&s.HandPain)
	c.FootPain.Apply(&s.FootPain)
	c.WristPain.Apply(&s.WristPain)
	c.DentalPain.Apply(&s.DentalPain)
	c.EyePain.Apply(&s.EyePain)
	c.EarPain.Apply(&s.EarPain)
	c.FeelingHot.Apply(&s.FeelingHot)
	c.FeelingCold.Apply(&s.FeelingCold)
	c.FeelingThirsty.Apply(&s.FeelingThirsty)
	c.NasalSymptomDescription.Apply(&s.NasalSymptomDescription)
	c.AbdominalPainLocation.Apply(&s.AbdominalPainLocation)
	c.DentalPainDescription.Apply(&s.DentalPainDescription)
	c.Comments.Apply(&s.Comments)
}

// SymptomDetail pairs an intensity with the free text that qualifies it.
type SymptomDetail struct {
	Field      string
	Intensity  int
	DetailName string
	Detail     *string
}

// Details lists the symptoms that carry extra text.
func (s *Symptom) Details() []SymptomDetail {
	return []SymptomDetail{
		{Field: "nasal_symptom", Intensity: s.NasalSymptom, DetailName: "nasal_symptom_description", Detail: s.NasalSymptomDescription},
		{Field: "abdominal_pain", Intensity: s.AbdominalPain, DetailName: "abdominal_pain_location", Detail: s.AbdominalPainLocation},
		{Field: "dental_pain", Intensity: s.DentalPain, DetailName: "dental_pain_description", Detail: s.DentalPainDescription},
	}
}
