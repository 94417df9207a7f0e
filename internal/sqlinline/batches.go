package sqlinline

// batchColumns is shared by every batch read so scanBatch stays in sync.
const batchColumns = `
    b.id::text, b.church_id::text, b.name, b.service_option_id::text, coalesce(so.name, ''),
    b.count_date, b.status, b.total_cents, b.cash_cents, b.check_cents, b.donation_count, b.notes,
    b.primary_attestor_id::text, b.primary_attestor_name, b.primary_attested_at,
    b.secondary_attestor_id::text, b.secondary_attestor_name, b.secondary_attested_at,
    b.finalized_by::text, b.finalized_at, b.created_by::text, b.created_at, b.updated_at`

const QInsertBatch = `--sql 4113edbe-f3bc-47da-ba5f-4251f9b1afce
insert into batches (church_id, name, service_option_id, count_date, notes, created_by)
values ($1::uuid, $2::text, nullif($3::text, '')::uuid, $4::date, $5::text, nullif($6::text, '')::uuid)
returning id::text, status, created_at, updated_at;
`

const QSelectBatch = `--sql 910d3103-95d2-4c33-9834-73bcb5de1796
select` + batchColumns + `
from batches b
left join service_options so on so.id = b.service_option_id
where b.church_id = $1::uuid and b.id = $2::uuid
limit 1;
`

const QListBatches = `--sql 9e592da9-e118-43d6-9678-a616f4ff526c
select` + batchColumns + `
from batches b
left join service_options so on so.id = b.service_option_id
where b.church_id = $1::uuid
  and ($2::text = '' or b.status = $2::text)
order by b.count_date desc, b.created_at desc
limit $3::int offset $4::int;
`

const QUpdateBatchDetails = `--sql 6b251feb-dd5d-49cb-8ba3-69e98d4eb445
update batches
set name = $3::text,
    service_option_id = nullif($4::text, '')::uuid,
    count_date = $5::date,
    notes = $6::text,
    updated_at = now()
where church_id = $1::uuid and id = $2::uuid and status <> 'FINALIZED';
`

const QDeleteBatch = `--sql d4c4270a-e189-4c19-a505-8efd788781ef
delete from batches
where church_id = $1::uuid and id = $2::uuid and status <> 'FINALIZED';
`

const QSetBatchStatus = `--sql 0814aa1c-95ac-41ea-82b1-dfeb61622578
update batches
set status = $4::text,
    primary_attestor_id = case when $5::bool then null else primary_attestor_id end,
    primary_attestor_name = case when $5::bool then '' else primary_attestor_name end,
    primary_attested_at = case when $5::bool then null else primary_attested_at end,
    secondary_attestor_id = case when $5::bool then null else secondary_attestor_id end,
    secondary_attestor_name = case when $5::bool then '' else secondary_attestor_name end,
    secondary_attested_at = case when $5::bool then null else secondary_attested_at end,
    updated_at = now()
where church_id = $1::uuid and id = $2::uuid and status = $3::text;
`

// QSaveBatchAttestation matches only while the status and both stored attestor
// names are still the ones the caller read.
const QSaveBatchAttestation = `--sql 00d92cfc-622e-400b-8060-e3e9b02d610d
update batches
set status = $4::text,
    primary_attestor_id = $5::uuid,
    primary_attestor_name = $6::text,
    primary_attested_at = $7::timestamptz,
    secondary_attestor_id = $8::uuid,
    secondary_attestor_name = $9::text,
    secondary_attested_at = $10::timestamptz,
    updated_at = now()
where church_id = $1::uuid and id = $2::uuid and status = $3::text
  and primary_attestor_name = $11::text
  and secondary_attestor_name = $12::text;
`

// QFinalizeBatch is the single guarded transition into FINALIZED. Totals are
// recomputed in the same statement so the stored figures always match the
// donations. It matches no row unless both attestor names are present and
// distinct and the batch holds at least one donation.
const QFinalizeBatch = `--sql a35acaca-4ec6-41be-afb2-b68bb084800c
with totals as (
    select
        coalesce(sum(amount_cents), 0)::bigint as total,
        coalesce(sum(amount_cents) filter (where donation_type = 'CASH'), 0)::bigint as cash,
        coalesce(sum(amount_cents) filter (where donation_type = 'CHECK'), 0)::bigint as checks,
        count(*)::int as donations
    from donations
    where church_id = $1::uuid and batch_id = $2::uuid
)
update batches b
set status = 'FINALIZED',
    total_cents = t.total,
    cash_cents = t.cash,
    check_cents = t.checks,
    donation_count = t.donations,
    finalized_by = nullif($3::text, '')::uuid,
    finalized_at = now(),
    updated_at = now()
from totals t
where b.church_id = $1::uuid
  and b.id = $2::uuid
  and b.status = 'CLOSED'
  and t.donations > 0
  and btrim(b.primary_attestor_name) <> ''
  and btrim(b.secondary_attestor_name) <> ''
  and lower(btrim(b.primary_attestor_name)) <> lower(btrim(b.secondary_attestor_name))
returning b.id::text;
`

const QRecomputeBatchTotals = `--sql 19e7c5a0-767b-48b5-ac77-f606024fe07f
with totals as (
    select
        coalesce(sum(amount_cents), 0)::bigint as total,
        coalesce(sum(amount_cents) filter (where donation_type = 'CASH'), 0)::bigint as cash,
        coalesce(sum(amount_cents) filter (where donation_type = 'CHECK'), 0)::bigint as checks,
        count(*)::int as donations
    from donations
    where church_id = $1::uuid and batch_id = $2::uuid
)
update batches b
set total_cents = t.total,
    cash_cents = t.cash,
    check_cents = t.checks,
    donation_count = t.donations,
    updated_at = now()
from totals t
where b.church_id = $1::uuid and b.id = $2::uuid and b.status <> 'FINALIZED'
returning b.total_cents, b.cash_cents, b.check_cents, b.donation_count;
`

const QDashboardCounts = `--sql 00c60750-3e4c-4406-a50b-c97f6d22ba56
select
    count(*) filter (where status = 'OPEN')::int,
    count(*) filter (where status = 'CLOSED')::int,
    coalesce(sum(total_cents) filter (where status = 'FINALIZED' and count_date >= date_trunc('year', $2::timestamptz)::date), 0)::bigint,
    coalesce(sum(cash_cents) filter (where status = 'FINALIZED' and count_date >= date_trunc('year', $2::timestamptz)::date), 0)::bigint,
    coalesce(sum(check_cents) filter (where status = 'FINALIZED' and count_date >= date_trunc('year', $2::timestamptz)::date), 0)::bigint
from batches
where church_id = $1::uuid;
`

const QDashboardTrend = `--sql 8814f247-d36c-48cd-a1eb-8137841a1a46
select id::text, name, count_date, total_cents
from batches
where church_id = $1::uuid and status = 'FINALIZED'
order by count_date desc, finalized_at desc
limit $2::int;
`
