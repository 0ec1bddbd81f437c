package sqlinline

const QInsertGeneration = `--sql 3f0c2a8e-5b61-4c7d-9e42-1a7b6d0c9f35
insert into generations(id, session_id, mode, parts, instruction, model, status, error, result_key, duration_ms, created_at)
values ($1::uuid, $2::text, $3::text, $4::text[], $5::text, $6::text, $7::text, nullif($8::text, ''), nullif($9::text, ''), $10::bigint, $11::timestamptz);
`

const QListGenerationsBySession = `--sql b84e1d07-2c9a-4f6b-8d13-6e5f0a7c2b91
select id::text, session_id, mode, parts, instruction, model, status, coalesce(error, ''), coalesce(result_key, ''), duration_ms, created_at
from generations
where session_id = $1::text
order by created_at desc
limit $2::int;
`
