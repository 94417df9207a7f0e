package sqlinline

const donationColumns = `
    d.id::text, d.church_id::text, d.batch_id::text, d.member_id::text,
    coalesce(btrim(m.first_name || ' ' || m.last_name), ''), coalesce(m.email, ''),
    d.donation_type, d.amount_cents, d.check_number, d.notes, d.notification_status,
    d.created_by::text, d.created_at, d.updated_at`

// QInsertDonation only inserts while the batch is OPEN.
const QInsertDonation = `--sql f1bca570-40e0-4fea-a8b9-c97871d51226
insert into donations (church_id, batch_id, member_id, donation_type, amount_cents, check_number, notes, created_by)
select b.church_id, b.id, nullif($3::text, '')::uuid, $4::text, $5::bigint, $6::text, $7::text, nullif($8::text, '')::uuid
from batches b
where b.church_id = $1::uuid and b.id = $2::uuid and b.status = 'OPEN'
returning id::text, notification_status, created_at, updated_at;
`

const QSelectDonation = `--sql b1ed3d82-7d34-45c6-8d99-7c0f13ded20c
select` + donationColumns + `
from donations d
left join members m on m.id = d.member_id
where d.church_id = $1::uuid and d.id = $2::uuid
limit 1;
`

const QUpdateDonation = `--sql 9b285ba7-f2b3-4e65-9071-a8cb7e43a3e0
update donations d
set member_id = nullif($3::text, '')::uuid,
    donation_type = $4::text,
    amount_cents = $5::bigint,
    check_number = $6::text,
    notes = $7::text,
    updated_at = now()
from batches b
where d.church_id = $1::uuid and d.id = $2::uuid and b.id = d.batch_id and b.status = 'OPEN'
returning d.updated_at;
`

const QDeleteDonation = `--sql 92abb297-62e7-413d-b8b8-3fa419a210e3
delete from donations d
using batches b
where d.church_id = $1::uuid and d.id = $2::uuid and b.id = d.batch_id and b.status = 'OPEN';
`

const QListDonationsByBatch = `--sql 769b7556-25fa-4cff-86b9-19b2d7471a9e
select` + donationColumns + `
from donations d
left join members m on m.id = d.member_id
where d.church_id = $1::uuid and d.batch_id = $2::uuid
order by d.created_at asc, d.id asc;
`

const QSetDonationNotificationStatus = `--sql b1bf83c4-087d-4681-9141-c8ad660dea54
update donations
set notification_status = $3::text, updated_at = now()
where church_id = $1::uuid and id = any($2::text[]::uuid[]);
`

const QMemberDonationHistory = `--sql 8f35fc4a-bc9e-4d7c-9a8e-d991a5286788
select` + donationColumns + `
from donations d
left join members m on m.id = d.member_id
where d.church_id = $1::uuid and d.member_id = $2::uuid
order by d.created_at desc
limit $3::int;
`
