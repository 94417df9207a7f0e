package sqlinline

const QListMembers = `--sql a405b117-d291-4fff-9e4e-e7e71130678e
select id::text, church_id::text, first_name, last_name, email, phone, coalesce(external_id, ''), notes,
       created_at, updated_at, count(*) over ()::int
from members
where church_id = $1::uuid
  and ($2::text = ''
       or (first_name || ' ' || last_name) ilike '%' || $2::text || '%'
       or email ilike '%' || $2::text || '%')
order by last_name, first_name, id
limit $3::int offset $4::int;
`

const QSelectMember = `--sql 0637cb14-4b21-4bd7-8a26-724ead0fa246
select id::text, church_id::text, first_name, last_name, email, phone, coalesce(external_id, ''), notes,
       created_at, updated_at
from members
where church_id = $1::uuid and id = $2::uuid
limit 1;
`

const QInsertMember = `--sql 22165a61-127f-452a-9061-2951353fb0e9
insert into members (church_id, first_name, last_name, email, phone, external_id, notes)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text, nullif($6::text, ''), $7::text)
returning id::text, created_at, updated_at;
`

const QUpdateMember = `--sql d91c9019-62d9-4ed8-87d3-2bb05f0c12d9
update members
set first_name = $3::text,
    last_name = $4::text,
    email = $5::text,
    phone = $6::text,
    notes = $7::text,
    updated_at = now()
where church_id = $1::uuid and id = $2::uuid
returning updated_at;
`

const QDeleteMember = `--sql 10bca9ff-df42-459d-aa22-0a23e3bf64fd
delete from members
where church_id = $1::uuid and id = $2::uuid;
`

// QUpsertMemberExternal keeps a locally entered email when the source has none.
const QUpsertMemberExternal = `--sql df9e0e1e-84a6-44f0-8924-a792fe60a8f7
insert into members (church_id, first_name, last_name, email, phone, external_id)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text, $6::text)
on conflict (church_id, external_id) where external_id is not null do update set
    first_name = excluded.first_name,
    last_name = excluded.last_name,
    email = case when excluded.email <> '' then excluded.email else members.email end,
    phone = case when excluded.phone <> '' then excluded.phone else members.phone end,
    updated_at = now()
returning id::text, (xmax = 0) as inserted, created_at, updated_at;
`
