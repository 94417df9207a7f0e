package sqlinline

const userColumns = `
    id::text, church_id::text, email, password_hash, first_name, last_name, role, is_active,
    last_login_at, last_login_country, created_at, updated_at`

// QRegisterChurch creates the church, its owner, a trial subscription and a
// default service in one statement.
const QRegisterChurch = `--sql 3be5ce06-94a4-46ca-8431-7c063eff1884
with church as (
    insert into churches (name, email)
    values ($1::text, $2::text)
    returning id, name, email, phone, address, logo_key, status, created_at, updated_at
),
owner as (
    insert into users (church_id, email, password_hash, first_name, last_name, role)
    select id, $2::text, $3::text, $4::text, $5::text, 'ACCOUNT_OWNER'
    from church
    returning id, created_at, updated_at
),
trial as (
    insert into subscriptions (church_id, plan, status, trial_ends_at)
    select id, 'TRIAL', 'TRIAL', $6::timestamptz
    from church
),
service as (
    insert into service_options (church_id, name, is_default)
    select id, 'Sunday Service', true
    from church
)
select c.id::text, c.name, c.email, c.phone, c.address, c.logo_key, c.status, c.created_at, c.updated_at,
       o.id::text, o.created_at, o.updated_at
from church c
cross join owner o;
`

const QSelectUserByEmail = `--sql 3f2b37b2-5673-4a8f-9ea3-3b1daa68bcad
select` + userColumns + `
from users
where lower(email) = lower($1::text)
limit 1;
`

const QSelectUserByID = `--sql 922e6ed0-2613-4afd-9f2c-f2eb10c3fe62
select` + userColumns + `
from users
where church_id = $1::uuid and id = $2::uuid
limit 1;
`

const QListUsers = `--sql dea088b9-e362-41fd-aea6-3fa31f2a59f8
select` + userColumns + `
from users
where church_id = $1::uuid
order by role = 'ACCOUNT_OWNER' desc, last_name, first_name;
`

const QInsertUser = `--sql 5fb77db7-fbb9-4798-bc37-30e2a213ad40
insert into users (church_id, email, password_hash, first_name, last_name, role)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text, $6::text)
returning id::text, is_active, created_at, updated_at;
`

const QUpdateUserRole = `--sql 03bf5e33-2aa3-4b7a-b06c-ff01c7e441f0
update users
set role = $3::text, updated_at = now()
where church_id = $1::uuid and id = $2::uuid and role <> 'ACCOUNT_OWNER';
`

const QSetUserActive = `--sql 5c1dc59e-5da4-42e6-a671-6e1008008f13
update users
set is_active = $3::bool, updated_at = now()
where church_id = $1::uuid and id = $2::uuid and role <> 'ACCOUNT_OWNER';
`

const QRecordLogin = `--sql 33ba8b7b-3978-4b22-98d8-1979c4c0eb36
update users
set last_login_at = now(), last_login_country = $2::text
where id = $1::uuid;
`

const QUpdatePassword = `--sql 1dac4e01-937e-459a-921d-33d4eddc59f1
update users
set password_hash = $2::text, updated_at = now()
where id = $1::uuid;
`

const QSelectGlobalAdminByEmail = `--sql aa313f10-15c7-4775-8622-021612586008
select id::text, email, password_hash, first_name, last_name, created_at
from global_admins
where lower(email) = lower($1::text)
limit 1;
`

const QUpsertGlobalAdmin = `--sql b3a33144-b336-485e-9800-a70799439408
insert into global_admins (email, password_hash, first_name, last_name)
values ($1::text, $2::text, $3::text, $4::text)
on conflict (lower(email)) do update set
    password_hash = excluded.password_hash,
    first_name = excluded.first_name,
    last_name = excluded.last_name
returning id::text;
`

const QInsertPasswordReset = `--sql bec12e78-76d8-47cc-9c6e-731ef9917df1
insert into password_resets (token_hash, user_id, expires_at)
values ($1::text, $2::uuid, $3::timestamptz);
`

const QConsumePasswordReset = `--sql 25ae86fd-2121-4d04-b192-6413ad62c065
update password_resets
set used_at = now()
where token_hash = $1::text and used_at is null and expires_at > $2::timestamptz
returning user_id::text;
`
