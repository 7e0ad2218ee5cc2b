package sqlinline

const QInsertApplication = `--sql 874a3502-20d3-4306-9b3f-c0b3a1dacbf0
insert into applications(id, job_id, student_id, status, rejection_reason, version, created_at, updated_at)
values ($1::uuid, $2::uuid, $3::text, $4::text, $5::text, 1, $6::timestamptz, $6::timestamptz);
`

const QSelectApplicationByID = `--sql 4c6226c1-98f0-4772-b3a6-e3fc6329bb8a
select id::text, job_id::text, student_id, status, rejection_reason, version, created_at, updated_at
from applications
where id = $1::uuid;
`

const QSelectActiveApplication = `--sql 63eb7476-8d39-4328-b692-b91931495834
select id::text, job_id::text, student_id, status, rejection_reason, version, created_at, updated_at
from applications
where job_id = $1::uuid and student_id = $2::text and status <> 'rejected'
limit 1;
`

const QListApplicationsByJob = `--sql bd740b41-131b-4e45-871b-0c965194ae77
select id::text, job_id::text, student_id, status, rejection_reason, version, created_at, updated_at
from applications
where job_id = $1::uuid
order by created_at, id;
`

const QListUndecidedApplications = `--sql 7b1563ff-71b1-4782-83fc-bcb23edd21bb
select id::text, job_id::text, student_id, status, rejection_reason, version, created_at, updated_at
from applications
where status in ('applied', 'evaluating')
order by created_at, id;
`

const QUpdateApplication = `--sql c2d17067-462b-4fb9-a10a-ca2ef2302983
update applications
set status = $3::text,
    rejection_reason = $4::text,
    updated_at = $5::timestamptz,
    version = version + 1
where id = $1::uuid and version = $2::bigint;
`
