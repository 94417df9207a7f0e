package sqlinline

const QEnqueueEmail = `--sql db34aafc-793c-4a78-8a8e-806c4d5fe32b
insert into email_outbox (church_id, kind, recipient, recipient_name, subject, body_html, body_text, related_id)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text, $6::text, $7::text, $8::uuid)
returning id::text, status, created_at;
`

// QClaimEmails moves ready rows to SENDING so concurrent workers never share one.
const QClaimEmails = `--sql bb69f2e8-ec0e-4179-81ee-fe4ea8c810da
with picked as (
    select id
    from email_outbox
    where status = 'QUEUED' and next_attempt_at <= now()
    order by next_attempt_at, created_at
    limit $1::int
    for update skip locked
)
update email_outbox o
set status = 'SENDING', attempts = o.attempts + 1, updated_at = now()
from picked
where o.id = picked.id
returning o.id::text, o.church_id::text, o.kind, o.recipient, o.recipient_name, o.subject,
          o.body_html, o.body_text, o.status, o.attempts, o.last_error, o.related_id::text, o.created_at;
`

const QMarkEmailSent = `--sql 816b9053-e420-4f65-b2bd-f6a8af565638
with sent as (
    update email_outbox
    set status = 'SENT', sent_at = now(), last_error = '', updated_at = now()
    where id = $1::uuid
    returning related_id, kind
)
update donations d
set notification_status = 'SENT', updated_at = now()
from sent
where sent.kind = 'DONATION_CONFIRMATION' and d.id = sent.related_id;
`

// QMarkEmailFailed requeues with a quadratic backoff until $3 attempts are spent.
const QMarkEmailFailed = `--sql 115b9ff8-e389-4f99-acbd-c92c922f9713
with failed as (
    update email_outbox
    set status = case when attempts >= $3::int then 'FAILED' else 'QUEUED' end,
        last_error = $2::text,
        next_attempt_at = now() + make_interval(mins => attempts * attempts),
        updated_at = now()
    where id = $1::uuid
    returning related_id, kind, status
),
mirror as (
    update donations d
    set notification_status = 'FAILED', updated_at = now()
    from failed
    where failed.status = 'FAILED' and failed.kind = 'DONATION_CONFIRMATION' and d.id = failed.related_id
)
select status = 'FAILED' from failed;
`

const QReclaimStaleEmails = `--sql fb9f8f74-0f50-43f2-8361-751e4d10acf5
update email_outbox
set status = 'QUEUED', updated_at = now()
where status = 'SENDING' and updated_at < now() - ($1::int * interval '1 second');
`
