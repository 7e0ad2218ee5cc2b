package sqlinline

const QInsertAnomaly = `--sql 5b8aab07-be10-470d-a073-58b54daa5068
insert into anomalies(
  id, type, severity, status, subject, job_id, employer_id, student_id,
  notes, resolved_by, resolved_at, version, created_at, updated_at
) values (
  $1::uuid, $2::text, $3::text, $4::text, $5::text, $6::uuid, $7::text, $8::text,
  $9::text, $10::text, $11::timestamptz, 1, $12::timestamptz, $12::timestamptz
);
`

const QSelectAnomalyByID = `--sql f3ad663f-f12d-4aff-a5b5-eeb72186658e
select
  id::text, type, severity, status, subject, job_id::text, employer_id, student_id,
  notes, resolved_by, resolved_at, version, created_at, updated_at
from anomalies
where id = $1::uuid;
`

const QSelectActiveAnomaly = `--sql dab244de-1b71-4113-95cd-2312cdc13cc4
select
  id::text, type, severity, status, subject, job_id::text, employer_id, student_id,
  notes, resolved_by, resolved_at, version, created_at, updated_at
from anomalies
where type = $1::text and subject = $2::text and status in ('open', 'investigating')
limit 1;
`

const QListAnomalies = `--sql ae32f927-fe89-4466-a5ee-54d35b3c7899
select
  id::text, type, severity, status, subject, job_id::text, employer_id, student_id,
  notes, resolved_by, resolved_at, version, created_at, updated_at
from anomalies
where ($1::text = '' or status = $1::text)
  and ($2::text = '' or type = $2::text)
  and ($3::text = '' or job_id = nullif($3::text, '')::uuid)
order by created_at desc, id
limit nullif($4::int, 0);
`

const QUpdateAnomaly = `--sql 3f143bdf-4455-4eaa-8d3e-807b5501c530
update anomalies
set severity = $3::text,
    status = $4::text,
    employer_id = $5::text,
    student_id = $6::text,
    notes = $7::text,
    resolved_by = $8::text,
    resolved_at = $9::timestamptz,
    updated_at = $10::timestamptz,
    version = version + 1
where id = $1::uuid and version = $2::bigint;
`

const QInsertCompanyRename = `--sql 677c8446-e621-499f-be9d-6dfd1dc2e6fb
insert into company_renames(id, employer_id, old_name, new_name, created_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::timestamptz);
`

const QListCompanyRenamesSince = `--sql b8c5b3a1-f674-4aa4-8a22-24213c235284
select id::text, employer_id, old_name, new_name, created_at
from company_renames
where created_at >= $1::timestamptz
order by created_at;
`
