package sqlinline

const subscriptionColumns = `
    church_id::text, plan, status, trial_ends_at, current_period_end,
    stripe_customer_id, stripe_subscription_id, created_at, updated_at`

const QSelectSubscription = `--sql 9dc686ac-6f0a-4d01-86f3-a15a3314bf53
select` + subscriptionColumns + `
from subscriptions
where church_id = $1::uuid
limit 1;
`

const QSelectSubscriptionByCustomer = `--sql b04b5716-bfc6-4bf5-9b3d-0153460b570d
select` + subscriptionColumns + `
from subscriptions
where stripe_customer_id = $1::text and stripe_customer_id <> ''
limit 1;
`

// QApplySubscriptionChange leaves columns untouched when the argument is null.
const QApplySubscriptionChange = `--sql f487277b-2c7e-484d-81a2-f022e2aad1dd
insert into subscriptions (church_id, plan, status, trial_ends_at, current_period_end,
                           stripe_customer_id, stripe_subscription_id)
values ($1::uuid, coalesce($2::text, 'TRIAL'), coalesce($3::text, 'TRIAL'), $4::timestamptz, $5::timestamptz,
        coalesce($6::text, ''), coalesce($7::text, ''))
on conflict (church_id) do update set
    plan = coalesce($2::text, subscriptions.plan),
    status = coalesce($3::text, subscriptions.status),
    trial_ends_at = coalesce($4::timestamptz, subscriptions.trial_ends_at),
    current_period_end = coalesce($5::timestamptz, subscriptions.current_period_end),
    stripe_customer_id = coalesce($6::text, subscriptions.stripe_customer_id),
    stripe_subscription_id = coalesce($7::text, subscriptions.stripe_subscription_id),
    updated_at = now();
`

const QExpireTrials = `--sql a6364b8a-e2fd-4863-bbf0-e5efeda9d324
update subscriptions
set status = 'EXPIRED', updated_at = now()
where status = 'TRIAL' and trial_ends_at is not null and trial_ends_at <= $1::timestamptz;
`
