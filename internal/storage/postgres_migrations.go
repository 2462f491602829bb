package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql: `
CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL DEFAULT '',
  full_name TEXT NOT NULL,
  oidc_id TEXT UNIQUE,
  email TEXT NOT NULL,
  is_admin BOOLEAN NOT NULL DEFAULT FALSE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  data JSONB NOT NULL,
  expiry_date TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_expiry ON sessions(expiry_date);

CREATE TABLE IF NOT EXISTS wees (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  time TIMESTAMPTZ NOT NULL,
  utc_offset INTEGER NOT NULL,
  duration INTERVAL NOT NULL,
  urgency INTEGER NOT NULL CHECK(urgency BETWEEN 0 AND 5),
  mls INTEGER NOT NULL CHECK(mls >= 0),
  colour_hue DOUBLE PRECISION NOT NULL CHECK(colour_hue BETWEEN -180 AND 360),
  colour_saturation DOUBLE PRECISION NOT NULL CHECK(colour_saturation BETWEEN 0 AND 1),
  colour_value DOUBLE PRECISION NOT NULL CHECK(colour_value BETWEEN 0 AND 1),
  comments TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_wees_user_time ON wees(user_id, time);

CREATE TABLE IF NOT EXISTS wee_urges (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  time TIMESTAMPTZ NOT NULL,
  utc_offset INTEGER NOT NULL,
  urgency INTEGER NOT NULL CHECK(urgency BETWEEN 0 AND 5),
  comments TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_wee_urges_user_time ON wee_urges(user_id, time);

CREATE TABLE IF NOT EXISTS poos (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  time TIMESTAMPTZ NOT NULL,
  utc_offset INTEGER NOT NULL,
  duration INTERVAL NOT NULL,
  urgency INTEGER NOT NULL CHECK(urgency BETWEEN 0 AND 5),
  quantity INTEGER NOT NULL CHECK(quantity BETWEEN 0 AND 10),
  bristol INTEGER NOT NULL CHECK(bristol BETWEEN 0 AND 7),
  colour_hue DOUBLE PRECISION NOT NULL CHECK(colour_hue BETWEEN -180 AND 360),
  colour_saturation DOUBLE PRECISION NOT NULL CHECK(colour_saturation BETWEEN 0 AND 1),
  colour_value DOUBLE PRECISION NOT NULL CHECK(colour_value BETWEEN 0 AND 1),
  comments TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_poos_user_time ON poos(user_id, time);

CREATE TABLE IF NOT EXISTS consumptions (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  time TIMESTAMPTZ NOT NULL,
  utc_offset INTEGER NOT NULL,
  duration INTERVAL NOT NULL,
  consumption_type TEXT NOT NULL CHECK(consumption_type IN ('digest', 'inhale_nose', 'inhale_mouth', 'spit_out', 'inject', 'apply_skin')),
  liquid_mls DOUBLE PRECISION CHECK(liquid_mls >= 0),
  comments TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_consumptions_user_time ON consumptions(user_id, time);

CREATE TABLE IF NOT EXISTS exercises (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  time TIMESTAMPTZ NOT NULL,
  utc_offset INTEGER NOT NULL,
  duration INTERVAL NOT NULL,
  location TEXT,
  distance NUMERIC,
  calories INTEGER CHECK(calories BETWEEN 0 AND 10000),
  rpe INTEGER CHECK(rpe BETWEEN 1 AND 10),
  exercise_type TEXT NOT NULL CHECK(exercise_type IN ('walking', 'running', 'cycling', 'indoor_cycling', 'jumping', 'skipping', 'flying', 'other')),
  comments TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_exercises_user_time ON exercises(user_id, time);

CREATE TABLE IF NOT EXISTS symptoms (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  time TIMESTAMPTZ NOT NULL,
  utc_offset INTEGER NOT NULL,
  appetite_loss INTEGER NOT NULL DEFAULT 0 CHECK(appetite_loss BETWEEN 0 AND 10),
  fever INTEGER NOT NULL DEFAULT 0 CHECK(fever BETWEEN 0 AND 10),
  cough INTEGER NOT NULL DEFAULT 0 CHECK(cough BETWEEN 0 AND 10),
  sore_throat INTEGER NOT NULL DEFAULT 0 CHECK(sore_throat BETWEEN 0 AND 10),
  nasal_symptom INTEGER NOT NULL DEFAULT 0 CHECK(nasal_symptom BETWEEN 0 AND 10),
  sneezing INTEGER NOT NULL DEFAULT 0 CHECK(sneezing BETWEEN 0 AND 10),
  heart_burn INTEGER NOT NULL DEFAULT 0 CHECK(heart_burn BETWEEN 0 AND 10),
  abdominal_pain INTEGER NOT NULL DEFAULT 0 CHECK(abdominal_pain BETWEEN 0 AND 10),
  diarrhea INTEGER NOT NULL DEFAULT 0 CHECK(diarrhea BETWEEN 0 AND 10),
  constipation INTEGER NOT NULL DEFAULT 0 CHECK(constipation BETWEEN 0 AND 10),
  lower_back_pain INTEGER NOT NULL DEFAULT 0 CHECK(lower_back_pain BETWEEN 0 AND 10),
  upper_back_pain INTEGER NOT NULL DEFAULT 0 CHECK(upper_back_pain BETWEEN 0 AND 10),
  neck_pain INTEGER NOT NULL DEFAULT 0 CHECK(neck_pain BETWEEN 0 AND 10),
  joint_pain INTEGER NOT NULL DEFAULT 0 CHECK(joint_pain BETWEEN 0 AND 10),
  headache INTEGER NOT NULL DEFAULT 0 CHECK(headache BETWEEN 0 AND 10),
  nausea INTEGER NOT NULL DEFAULT 0 CHECK(nausea BETWEEN 0 AND 10),
  dizziness INTEGER NOT NULL DEFAULT 0 CHECK(dizziness BETWEEN 0 AND 10),
  stomach_ache INTEGER NOT NULL DEFAULT 0 CHECK(stomach_ache BETWEEN 0 AND 10),
  chest_pain INTEGER NOT NULL DEFAULT 0 CHECK(chest_pain BETWEEN 0 AND 10),
  shortness_of_breath INTEGER NOT NULL DEFAULT 0 CHECK(shortness_of_breath BETWEEN 0 AND 10),
  fatigue INTEGER NOT NULL DEFAULT 0 CHECK(fatigue BETWEEN 0 AND 10),
  anxiety INTEGER NOT NULL DEFAULT 0 CHECK(anxiety BETWEEN 0 AND 10),
  depression INTEGER NOT NULL DEFAULT 0 CHECK(depression BETWEEN 0 AND 10),
  insomnia INTEGER NOT NULL DEFAULT 0 CHECK(insomnia BETWEEN 0 AND 10),
  shoulder_pain INTEGER NOT NULL DEFAULT 0 CHECK(shoulder_pain BETWEEN 0 AND 10),
  hand_pain INTEGER NOT NULL DEFAULT 0 CHECK(hand_pain BETWEEN 0 AND 10),
  foot_pain INTEGER NOT NULL DEFAULT 0 CHECK(foot_pain BETWEEN 0 AND 10),
  wrist_pain INTEGER NOT NULL DEFAULT 0 CHECK(wrist_pain BETWEEN 0 AND 10),
  dental_pain INTEGER NOT NULL DEFAULT 0 CHECK(dental_pain BETWEEN 0 AND 10),
  eye_pain INTEGER NOT NULL DEFAULT 0 CHECK(eye_pain BETWEEN 0 AND 10),
  ear_pain INTEGER NOT NULL DEFAULT 0 CHECK(ear_pain BETWEEN 0 AND 10),
  feeling_hot INTEGER NOT NULL DEFAULT 0 CHECK(feeling_hot BETWEEN 0 AND 10),
  feeling_cold INTEGER NOT NULL DEFAULT 0 CHECK(feeling_cold BETWEEN 0 AND 10),
  feeling_thirsty INTEGER NOT NULL DEFAULT 0 CHECK(feeling_thirsty BETWEEN 0 AND 10),
  nasal_symptom_description TEXT,
  abdominal_pain_location TEXT,
  dental_pain_description TEXT,
  comments TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_symptoms_user_time ON symptoms(user_id, time);

CREATE TABLE IF NOT EXISTS health_metrics (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  time TIMESTAMPTZ NOT NULL,
  utc_offset INTEGER NOT NULL,
  pulse INTEGER CHECK(pulse BETWEEN 30 AND 220),
  blood_glucose NUMERIC CHECK(blood_glucose BETWEEN 0 AND 50),
  systolic_bp INTEGER CHECK(systolic_bp BETWEEN 50 AND 300),
  diastolic_bp INTEGER CHECK(diastolic_bp BETWEEN 30 AND 200),
  weight NUMERIC CHECK(weight BETWEEN 0 AND 500),
  height INTEGER CHECK(height BETWEEN 30 AND 300),
  waist_circumference NUMERIC CHECK(waist_circumference BETWEEN 30 AND 300),
  comments TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_health_metrics_user_time ON health_metrics(user_id, time);

CREATE TABLE IF NOT EXISTS refluxes (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  time TIMESTAMPTZ NOT NULL,
  utc_offset INTEGER NOT NULL,
  duration INTERVAL NOT NULL,
  location TEXT,
  severity INTEGER NOT NULL CHECK(severity BETWEEN 0 AND 10),
  comments TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_refluxes_user_time ON refluxes(user_id, time);
`,
	},
	{
		version: 2,
		name:    "consumables",
		sql: `
CREATE TABLE IF NOT EXISTS consumables (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  brand TEXT,
  barcode TEXT,
  is_organic BOOLEAN NOT NULL DEFAULT FALSE,
  unit TEXT NOT NULL CHECK(unit IN ('millilitres', 'grams', 'international_units', 'number')),
  comments TEXT,
  created TIMESTAMPTZ,
  destroyed TIMESTAMPTZ,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_consumables_barcode ON consumables(barcode);

CREATE TABLE IF NOT EXISTS nested_consumables (
  parent_id BIGINT NOT NULL REFERENCES consumables(id) ON DELETE CASCADE,
  consumable_id BIGINT NOT NULL REFERENCES consumables(id) ON DELETE CASCADE,
  quantity DOUBLE PRECISION CHECK(quantity >= 0),
  liquid_mls DOUBLE PRECISION CHECK(liquid_mls >= 0),
  comments TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (parent_id, consumable_id),
  CHECK (parent_id <> consumable_id)
);

CREATE TABLE IF NOT EXISTS consumption_consumables (
  consumption_id BIGINT NOT NULL REFERENCES consumptions(id) ON DELETE CASCADE,
  consumable_id BIGINT NOT NULL REFERENCES consumables(id) ON DELETE CASCADE,
  quantity DOUBLE PRECISION CHECK(quantity >= 0),
  liquid_mls DOUBLE PRECISION CHECK(liquid_mls >= 0),
  comments TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (consumption_id, consumable_id)
);

CREATE INDEX IF NOT EXISTS idx_consumption_consumables_consumable ON consumption_consumables(consumable_id);
`,
	},
	{
		version: 3,
		name:    "notes",
		sql: `
CREATE TABLE IF NOT EXISTS notes (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  time TIMESTAMPTZ NOT NULL,
  utc_offset INTEGER NOT NULL,
  comments TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_notes_user_time ON notes(user_id, time);
`,
	},
}

// Migrate applies pending migrations, each in its own transaction.
func (p *PostgresStorage) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := p.pool.QueryRow(ctx, `SELECT 1 FROM schema_migrations WHERE version = $1`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != pgx.ErrNoRows {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		err = pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, m.sql); err != nil {
				return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations(version, name) VALUES($1, $2)`, m.version, m.name); err != nil {
				return fmt.Errorf("record migration version %d: %w", m.version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		p.logger.Infof("applied migration %d (%s)", m.version, m.name)
	}
	return nil
}
