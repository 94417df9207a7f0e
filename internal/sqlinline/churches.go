package sqlinline

const QSelectChurch = `--sql 0a65f6ca-d3cf-49fa-bc05-cf2da4020075
select id::text, name, email, phone, address, logo_key, status, created_at, updated_at
from churches
where id = $1::uuid
limit 1;
`

const QUpdateChurch = `--sql 47f90b19-6132-4271-9622-b18130e2530a
update churches
set name = $2::text, email = $3::text, phone = $4::text, address = $5::text, updated_at = now()
where id = $1::uuid
returning updated_at;
`

const QSetChurchLogo = `--sql eac2edcb-3bc4-4260-9f95-4c6c216ea801
update churches
set logo_key = $2::text, updated_at = now()
where id = $1::uuid;
`

const QSetChurchStatus = `--sql 3c6395e6-6dcc-42b4-8613-053fb5205428
update churches
set status = $2::text, updated_at = now()
where id = $1::uuid;
`

const QListChurchSummaries = `--sql 1c02d635-994a-4dc8-8f91-0b7bd6d70ca3
select
    c.id::text, c.name, c.email, c.phone, c.address, c.logo_key, c.status, c.created_at, c.updated_at,
    coalesce(s.plan, 'TRIAL'), coalesce(s.status, 'EXPIRED'), s.trial_ends_at, s.current_period_end,
    coalesce(s.stripe_customer_id, ''), coalesce(s.stripe_subscription_id, ''),
    (select count(*) from users u where u.church_id = c.id)::int,
    (select count(*) from batches b where b.church_id = c.id and b.status = 'FINALIZED')::int,
    (select max(b.finalized_at) from batches b where b.church_id = c.id and b.status = 'FINALIZED'),
    (select coalesce(sum(b.total_cents), 0) from batches b where b.church_id = c.id and b.status = 'FINALIZED')::bigint
from churches c
left join subscriptions s on s.church_id = c.id
where c.status <> 'DELETED'
  and ($1::text = '' or c.name ilike '%' || $1::text || '%' or c.email ilike '%' || $1::text || '%')
order by c.created_at desc
limit $2::int offset $3::int;
`

const QListServiceOptions = `--sql 50221b98-642b-4fdf-8234-d9fc1c35a981
select id::text, church_id::text, name, is_default, created_at
from service_options
where church_id = $1::uuid
order by is_default desc, name;
`

const QSelectServiceOption = `--sql f1bc4a80-fe20-4efc-98cd-860ce01136af
select id::text, church_id::text, name, is_default, created_at
from service_options
where church_id = $1::uuid and id = $2::uuid
limit 1;
`

const QClearDefaultServiceOption = `--sql 147debbc-2ae0-4577-8b9c-3d805d15a3f5
update service_options
set is_default = false
where church_id = $1::uuid and is_default;
`

const QInsertServiceOption = `--sql 4fdf5529-af20-428a-ab94-7ff821aa5cef
insert into service_options (church_id, name, is_default)
values ($1::uuid, $2::text, $3::bool)
returning id::text, created_at;
`

const QDeleteServiceOption = `--sql 165a1304-fc95-4db8-a227-b5b6622d848d
delete from service_options
where church_id = $1::uuid and id = $2::uuid;
`

const QListReportRecipients = `--sql 59a5f4e9-c84f-48e6-ac9e-2dbb9a485c2a
select id::text, church_id::text, first_name, last_name, email, created_at
from report_recipients
where church_id = $1::uuid
order by last_name, first_name;
`

const QInsertReportRecipient = `--sql f5c683a2-b835-4f09-9076-201850a5328c
insert into report_recipients (church_id, first_name, last_name, email)
values ($1::uuid, $2::text, $3::text, $4::text)
returning id::text, created_at;
`

const QDeleteReportRecipient = `--sql cda9c5b6-fc25-438d-8af0-a35df8bcbe16
delete from report_recipients
where church_id = $1::uuid and id = $2::uuid;
`
