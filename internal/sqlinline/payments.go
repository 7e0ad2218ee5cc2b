package sqlinline

const QInsertPayment = `--sql e3bf6254-ff58-4de0-a97e-b2747b07e035
insert into escrow_payments(
  id, job_id, employer_id, student_id, amount, status,
  escrowed_at, released_at, refunded_at, version, created_at, updated_at
) values (
  $1::uuid, $2::uuid, $3::text, $4::text, $5::bigint, $6::text,
  $7::timestamptz, $8::timestamptz, $9::timestamptz, 1, $10::timestamptz, $10::timestamptz
);
`

const QSelectPaymentByID = `--sql fd587bc7-a2ca-4263-a9ab-ecc1332c40ab
select
  id::text, job_id::text, employer_id, student_id, amount, status,
  escrowed_at, released_at, refunded_at, version, created_at, updated_at
from escrow_payments
where id = $1::uuid;
`

const QSelectActivePaymentByJob = `--sql 2fa31ffa-8b60-4ce8-8fe6-129ac25fb251
select
  id::text, job_id::text, employer_id, student_id, amount, status,
  escrowed_at, released_at, refunded_at, version, created_at, updated_at
from escrow_payments
where job_id = $1::uuid and status <> 'refunded'
limit 1;
`

const QUpdatePayment = `--sql 4d7844ad-faff-4a59-a650-9360e5be1e0a
update escrow_payments
set student_id = $3::text,
    amount = $4::bigint,
    status = $5::text,
    escrowed_at = $6::timestamptz,
    released_at = $7::timestamptz,
    refunded_at = $8::timestamptz,
    updated_at = $9::timestamptz,
    version = version + 1
where id = $1::uuid and version = $2::bigint;
`

const QSumEscrowed = `--sql 39e25800-de9a-4525-9cc2-b65ef6f0739f
select coalesce(sum(amount), 0)::bigint
from escrow_payments
where status = 'escrowed';
`
