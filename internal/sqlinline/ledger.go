package sqlinline

const QSelectAccountForUpdate = `--sql 9dcce987-0595-4847-a2cb-a459aa090797
select actor_id, balance, version, updated_at
from accounts
where actor_id = $1::text
for update;
`

const QUpsertAccountBalance = `--sql 02b09de3-5e4b-42bd-8309-21458aa767f0
insert into accounts(actor_id, balance, version, updated_at)
values ($1::text, $2::bigint, 1, now())
on conflict (actor_id) do update
set balance = excluded.balance,
    version = accounts.version + 1,
    updated_at = now();
`

const QInsertLedgerEntry = `--sql 605499c2-b02c-46e9-9c52-f2e85a3de270
insert into ledger_entries(id, actor_id, kind, amount, balance_after, job_id, payment_id, created_at)
values ($1::uuid, $2::text, $3::text, $4::bigint, $5::bigint, $6::uuid, $7::uuid, $8::timestamptz);
`

const QListLedgerEntries = `--sql 393e6403-2caa-4127-a30d-24ca9a2b95e6
select id::text, actor_id, kind, amount, balance_after, job_id::text, payment_id::text, created_at
from ledger_entries
where actor_id = $1::text
order by created_at desc, id desc
limit nullif($2::int, 0);
`

const QSumBalances = `--sql 3a61e10c-c967-4923-ac82-9e04af22d15f
select coalesce(sum(balance), 0)::bigint
from accounts;
`
