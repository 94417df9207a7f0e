package sqlinline

const QSelectIntegrationToken = `--sql 7e1fda11-e346-4e77-9982-e98f63ebfc8c
select token, refresh_token, expires_at, properties
from integration_tokens
where provider = $1::text and scope = $2::text
limit 1;
`

const QUpsertIntegrationToken = `--sql 8bb8990e-49f2-47a5-808d-eb33573b13e0
insert into integration_tokens (provider, scope, token, refresh_token, expires_at, properties)
values ($1::text, $2::text, $3::text, $4::text, $5::timestamptz, $6::jsonb)
on conflict (provider, scope) do update set
    token = excluded.token,
    refresh_token = excluded.refresh_token,
    expires_at = excluded.expires_at,
    properties = excluded.properties,
    updated_at = now();
`

const QDeleteIntegrationToken = `--sql 69fbf189-7ca8-4480-a09f-4d38d8a94dd8
delete from integration_tokens
where provider = $1::text and scope = $2::text;
`
