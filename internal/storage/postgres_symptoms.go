package storage

import "github.com/brianmay/penguin-nurse/internal"

var symptomTable = pgEventTable[internal.Symptom]{
	name: "symptoms",
	columns: []string{
		"appetite_loss", "fever", "cough", "sore_throat",
		"nasal_symptom", "sneezing", "heart_burn", "abdominal_pain",
		"diarrhea", "constipation", "lower_back_pain", "upper_back_pain",
		"neck_pain", "joint_pain", "headache", "nausea",
		"dizziness", "stomach_ache", "chest_pain", "shortness_of_breath",
		"fatigue", "anxiety", "depression", "insomnia",
		"shoulder_pain", "hand_pain", "foot_pain", "wrist_pain",
		"dental_pain", "eye_pain", "ear_pain", "feeling_hot",
		"feeling_cold", "feeling_thirsty", "nasal_symptom_description", "abdominal_pain_location",
		"dental_pain_description", "comments",
	},
	fields: func(e *internal.Symptom) []any {
		return []any{
			&e.AppetiteLoss, &e.Fever, &e.Cough, &e.SoreThroat,
			&e.NasalSymptom, &e.Sneezing, &e.HeartBurn, &e.AbdominalPain,
			&e.Diarrhea, &e.Constipation, &e.LowerBackPain, &e.UpperBackPain,
			&e.NeckPain, &e.JointPain, &e.Headache, &e.Nausea,
			&e.Dizziness, &e.StomachAche, &e.ChestPain, &e.ShortnessOfBreath,
			&e.Fatigue, &e.Anxiety, &e.Depression, &e.Insomnia,
			&e.ShoulderPain, &e.HandPain, &e.FootPain, &e.WristPain,
			&e.DentalPain, &e.EyePain, &e.EarPain, &e.FeelingHot,
			&e.FeelingCold, &e.FeelingThirsty, &e.NasalSymptomDescription, &e.AbdominalPainLocation,
			&e.DentalPainDescription, &e.Comments,
		}
	},
	values: func(e *internal.Symptom) []any {
		return []any{
			int32(e.AppetiteLoss), int32(e.Fever), int32(e.Cough), int32(e.SoreThroat),
			int32(e.NasalSymptom), int32(e.Sneezing), int32(e.HeartBurn), int32(e.AbdominalPain),
			int32(e.Diarrhea), int32(e.Constipation), int32(e.LowerBackPain), int32(e.UpperBackPain),
			int32(e.NeckPain), int32(e.JointPain), int32(e.Headache), int32(e.Nausea),
			int32(e.Dizziness), int32(e.StomachAche), int32(e.ChestPain), int32(e.ShortnessOfBreath),
			int32(e.Fatigue), int32(e.Anxiety), int32(e.Depression), int32(e.Insomnia),
			int32(e.ShoulderPain), int32(e.HandPain), int32(e.FootPain), int32(e.WristPain),
			int32(e.DentalPain), int32(e.EyePain), int32(e.EarPain), int32(e.FeelingHot),
			int32(e.FeelingCold), int32(e.FeelingThirsty), e.NasalSymptomDescription, e.AbdominalPainLocation,
			e.DentalPainDescription, e.Comments,
		}
	},
}
