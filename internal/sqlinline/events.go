package sqlinline

const QInsertJobEvent = `--sql a3c530ff-90c2-426d-9525-54763e971af4
insert into job_events(job_id, field, from_status, to_status, reason, actor_id, created_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text, $6::text, $7::timestamptz)
returning seq;
`

const QListJobEventsSince = `--sql 473d2af7-8b56-4c22-98f2-a8997611fc4e
select seq, job_id::text, field, from_status, to_status, reason, actor_id, created_at
from job_events
where job_id = $1::uuid and seq > $2::bigint
order by seq
limit nullif($3::int, 0);
`
