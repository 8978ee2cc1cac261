package postgres

import (
	"context"
	"fmt"
)

const (
	constraintCourseTitle   = "courses_title_key"
	constraintOneCorrect    = "options_one_correct_idx"
	constraintCorrectOption = "questions_correct_option_fkey"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email         VARCHAR(255) NOT NULL UNIQUE,
    username      VARCHAR(255) NOT NULL UNIQUE,
    password_hash VARCHAR(255) NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS courses (
    id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    title       VARCHAR(255) NOT NULL,
    description TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT courses_title_key UNIQUE (title)
);

CREATE TABLE IF NOT EXISTS chapters (
    id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    course_id   UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
    title       VARCHAR(255) NOT NULL,
    description TEXT,
    order_index INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS chapters_course_order_idx ON chapters (course_id, order_index, created_at);

DO $$ BEGIN
    CREATE TYPE question_difficulty AS ENUM ('easy', 'medium', 'hard');
EXCEPTION WHEN duplicate_object THEN NULL;
END $$;

DO $$ BEGIN
    CREATE TYPE question_source AS ENUM ('generated', 'past_paper', 'manual');
EXCEPTION WHEN duplicate_object THEN NULL;
END $$;

CREATE TABLE IF NOT EXISTS questions (
    id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    chapter_id        UUID NOT NULL REFERENCES chapters(id) ON DELETE CASCADE,
    question_text     TEXT NOT NULL,
    difficulty        question_difficulty NOT NULL DEFAULT 'medium',
    source            question_source NOT NULL DEFAULT 'manual',
    explanation       TEXT,
    correct_option_id UUID,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS questions_chapter_idx ON questions (chapter_id, created_at);
CREATE INDEX IF NOT EXISTS questions_text_md5_idx ON questions (md5(question_text));

CREATE TABLE IF NOT EXISTS options (
    id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    question_id UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
    option_text TEXT NOT NULL,
    is_correct  BOOLEAN NOT NULL DEFAULT false,
    position    INTEGER NOT NULL DEFAULT 0,
    CONSTRAINT options_id_question_key UNIQUE (id, question_id)
);
CREATE UNIQUE INDEX IF NOT EXISTS options_one_correct_idx ON options (question_id) WHERE is_correct;

DO $$ BEGIN
    ALTER TABLE questions ADD CONSTRAINT questions_correct_option_fkey
        FOREIGN KEY (correct_option_id, id) REFERENCES options (id, question_id);
EXCEPTION WHEN duplicate_object THEN NULL;
END $$;

CREATE TABLE IF NOT EXISTS exams (
    id                 UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    title              VARCHAR(255) NOT NULL,
    description        TEXT,
    time_limit_minutes INTEGER NOT NULL CHECK (time_limit_minutes > 0),
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS exam_sessions (
    id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id       UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    exam_id       UUID NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
    started_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    completed_at  TIMESTAMPTZ,
    score_percent DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS exam_answers (
    id                 UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    session_id         UUID NOT NULL REFERENCES exam_sessions(id) ON DELETE CASCADE,
    question_id        UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
    selected_option_id UUID REFERENCES options(id) ON DELETE SET NULL,
    is_correct         BOOLEAN NOT NULL DEFAULT false,
    CONSTRAINT exam_answers_session_question_key UNIQUE (session_id, question_id)
);

CREATE TABLE IF NOT EXISTS study_attempts (
    id                 UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id            UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    question_id        UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
    selected_option_id UUID REFERENCES options(id) ON DELETE SET NULL,
    is_correct         BOOLEAN NOT NULL DEFAULT false,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS study_attempts_user_idx ON study_attempts (user_id, created_at DESC);
`

// Migrate creates any missing tables, types and constraints. It is safe to run repeatedly.
func (p *Storage) Migrate(ctx context.Context) error {
	if _, err := p.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
