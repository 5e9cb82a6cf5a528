package sqlinline

const QDonationTotals = `--sql d5576a74-f0fc-4551-9c78-07b73c6ef4d0
select count(*)::int, coalesce(sum(quantity), 0)::int
from donations;
`

const QDonationsByMonth = `--sql 7d2394ac-9d72-4f36-9cdc-1edc7938f6e5
select coalesce(to_char(pickup_time at time zone 'UTC', 'YYYY-MM'), 'Unknown') as label, count(*)::int
from donations
group by 1;
`

const QReportsByMonth = `--sql 80546ff8-ddc4-4068-80ad-bcfaa567905f
select to_char(report_time at time zone 'UTC', 'YYYY-MM') as label, count(*)::int
from reports
group by 1;
`

const QReportsByStatus = `--sql c62b53bc-2753-450b-8eff-69d7e503e032
select status, count(*)::int
from reports
group by status;
`

const QUsersByRole = `--sql f0ecf09d-5d83-4dcc-950f-ada372c427fa
select role, count(*)::int
from users
group by role;
`

const QUpcomingEvents = `--sql e8139907-2739-4714-9b95-23425369d2c4
select count(*)::int
from events
where status = 'scheduled'
  and event_time >= $1::timestamptz;
`

const QFeedbackSentiment = `--sql f0bb3ad0-46f8-41af-886f-a313eab73277
select count(*)::int, coalesce(avg(polarity), 0)::double precision
from feedback;
`
