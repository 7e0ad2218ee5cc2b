package sqlinline

const QInsertJob = `--sql 81a6c405-ce96-43d8-a991-f551a3e300f4
insert into jobs(
  id, employer_id, title, gold_reward, priority, deadline, status,
  accepted_student_id, accepted_at, submission_status, report, submitted_at,
  rejection_reason, version, created_at, updated_at
) values (
  $1::uuid, $2::text, $3::text, $4::bigint, $5::text, $6::timestamptz, $7::text,
  $8::text, $9::timestamptz, $10::text, $11::jsonb, $12::timestamptz,
  $13::text, 1, $14::timestamptz, $14::timestamptz
);
`

const QSelectJobByID = `--sql bef2225a-4565-4222-8fe2-d25865c19cba
select
  id::text, employer_id, title, gold_reward, priority, deadline, status,
  accepted_student_id, accepted_at, submission_status, report, submitted_at,
  rejection_reason, version, created_at, updated_at
from jobs
where id = $1::uuid;
`

const QListJobs = `--sql d706de4e-23d0-48e5-b63d-157bf837284f
select
  id::text, employer_id, title, gold_reward, priority, deadline, status,
  accepted_student_id, accepted_at, submission_status, report, submitted_at,
  rejection_reason, version, created_at, updated_at
from jobs
where ($1::text = '' or status = $1::text)
  and ($2::text = '' or employer_id = $2::text)
  and ($3::text = '' or accepted_student_id = $3::text)
order by created_at desc, id
limit nullif($4::int, 0);
`

const QUpdateJob = `--sql 93fa701c-959e-478b-aaae-854caacd70ef
update jobs
set title = $3::text,
    gold_reward = $4::bigint,
    priority = $5::text,
    deadline = $6::timestamptz,
    status = $7::text,
    accepted_student_id = $8::text,
    accepted_at = $9::timestamptz,
    submission_status = $10::text,
    report = $11::jsonb,
    submitted_at = $12::timestamptz,
    rejection_reason = $13::text,
    updated_at = $14::timestamptz,
    version = version + 1
where id = $1::uuid and version = $2::bigint;
`

const QLockJobToStudent = `--sql acc9568c-570c-46b1-ae72-d302cbca8018
update jobs
set accepted_student_id = $2::text,
    accepted_at = $3::timestamptz,
    status = 'in_progress',
    submission_status = 'pending',
    updated_at = $3::timestamptz,
    version = version + 1
where id = $1::uuid
  and accepted_student_id is null
  and status = 'posted'
returning
  id::text, employer_id, title, gold_reward, priority, deadline, status,
  accepted_student_id, accepted_at, submission_status, report, submitted_at,
  rejection_reason, version, created_at, updated_at;
`
